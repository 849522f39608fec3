package report

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"path/filepath"
	"time"

	"github.com/ginjaninja78/sales-pipeline/internal/pipeline"
)

// =============================================================================
// XML STRUCTURE
// =============================================================================
//
//   <salesReport title="Sales Report" runId="..." started="...">
//     <summary rows="120" filesSeen="3" filesAccepted="2" filesSkipped="1"
//              rowsRepaired="4" unknownDates="1"/>
//     <skipped file="notes.txt" kind="unsupported">reason</skipped>
//     <aggregate dimension="month" key="date" total="...">
//       <group n="1" key="2025-01">12345.67</group>
//     </aggregate>
//     ...
//   </salesReport>
//
// Groups are numbered from 1 within each aggregate, in aggregate order.

type xmlReport struct {
	XMLName    xml.Name       `xml:"salesReport"`
	Title      string         `xml:"title,attr"`
	RunID      string         `xml:"runId,attr"`
	Started    string         `xml:"started,attr"`
	Summary    xmlSummary     `xml:"summary"`
	Skipped    []xmlSkipped   `xml:"skipped"`
	Aggregates []xmlAggregate `xml:"aggregate"`
}

type xmlSummary struct {
	Rows          int `xml:"rows,attr"`
	FilesSeen     int `xml:"filesSeen,attr"`
	FilesAccepted int `xml:"filesAccepted,attr"`
	FilesSkipped  int `xml:"filesSkipped,attr"`
	RowsRepaired  int `xml:"rowsRepaired,attr"`
	UnknownDates  int `xml:"unknownDates,attr"`
}

type xmlSkipped struct {
	File   string `xml:"file,attr"`
	Kind   string `xml:"kind,attr"`
	Reason string `xml:",chardata"`
}

type xmlAggregate struct {
	Dimension string     `xml:"dimension,attr"`
	Key       string     `xml:"key,attr"`
	Total     string     `xml:"total,attr"`
	Groups    []xmlGroup `xml:"group"`
}

type xmlGroup struct {
	N       int    `xml:"n,attr"`
	Key     string `xml:"key,attr"`
	Revenue string `xml:",chardata"`
}

// =============================================================================
// XML GENERATION
// =============================================================================

// GenerateXML renders the run summary and aggregates as an indented XML
// document with a declaration.
func GenerateXML(res *pipeline.Result, opts Options) ([]byte, error) {
	doc := xmlReport{
		Title:   opts.Title,
		RunID:   res.RunID.String(),
		Started: res.Stats.StartTime.UTC().Format(time.RFC3339),
		Summary: xmlSummary{
			Rows:          res.Cleaned.Len(),
			FilesSeen:     res.Stats.Merge.FilesSeen,
			FilesAccepted: res.Stats.Merge.FilesAccepted,
			FilesSkipped:  res.Stats.Merge.FilesSkipped,
			RowsRepaired:  res.Stats.Repairs.RowsRepaired,
			UnknownDates:  res.Stats.Repairs.UnknownDates,
		},
	}

	for _, d := range res.Diagnostics {
		doc.Skipped = append(doc.Skipped, xmlSkipped{
			File:   filepath.Base(d.File),
			Kind:   string(d.Kind),
			Reason: d.Message,
		})
	}

	for _, agg := range res.Aggregates.All() {
		a := xmlAggregate{
			Dimension: agg.Dimension,
			Key:       headerFor(agg.Dimension),
			Total:     formatRevenue(agg.Total(), opts.Precision),
		}
		for i, g := range agg.Groups {
			a.Groups = append(a.Groups, xmlGroup{
				N:       i + 1,
				Key:     g.Key,
				Revenue: formatRevenue(g.Revenue, opts.Precision),
			})
		}
		doc.Aggregates = append(doc.Aggregates, a)
	}

	var buffer bytes.Buffer
	buffer.WriteString(xml.Header)

	enc := xml.NewEncoder(&buffer)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to marshal XML: %w", err)
	}
	buffer.WriteString("\n")

	return buffer.Bytes(), nil
}
