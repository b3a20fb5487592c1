package services

import (
	"fmt"
	"strconv"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// reactionColumns is the fixed column order of reactions in reports.
var reactionColumns = []string{"like", "love", "dislike"}

// GenerateAnalyticsPDF creates a visit/reaction report for a property using
// maroto/v2. It returns the raw PDF bytes or an error.
func GenerateAnalyticsPDF(data *AnalyticsData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithOrientation(orientation.Vertical).
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).
		WithTopMargin(10).
		WithRightMargin(10).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
			Size:    7,
			Color:   &props.Color{Red: 120, Green: 120, Blue: 120},
		}).
		Build()

	m := maroto.New(cfg)

	addAnalyticsHeader(m, data)
	addAnalyticsTableHeader(m)
	for i, r := range data.Rows {
		addAnalyticsRow(m, r, i%2 == 1)
	}
	addAnalyticsTotals(m, data)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate analytics PDF: %w", err)
	}

	return doc.GetBytes(), nil
}

func addAnalyticsHeader(m core.Maroto, data *AnalyticsData) {
	m.AddRows(
		row.New(12).Add(
			col.New(12).Add(
				text.New(data.PropertyName, props.Text{
					Size:  16,
					Style: fontstyle.Bold,
					Align: align.Center,
				}),
			),
		),
	)

	grey := &props.Color{Red: 80, Green: 80, Blue: 80}
	m.AddRows(
		row.New(8).Add(
			col.New(8).Add(
				text.New(data.Address, props.Text{Size: 9, Align: align.Left, Color: grey}),
			),
			col.New(4).Add(
				text.New(fmt.Sprintf("Generated: %s", data.GeneratedDate), props.Text{Size: 9, Align: align.Right, Color: grey}),
			),
		),
	)

	m.AddRows(row.New(4))
}

func addAnalyticsTableHeader(m core.Maroto) {
	headerCell := props.Cell{BackgroundColor: &props.Color{Red: 33, Green: 37, Blue: 41}}
	headerText := props.Text{
		Size:  8,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
	}
	headerTextLeft := headerText
	headerTextLeft.Align = align.Left

	cols := []core.Col{
		col.New(1).Add(text.New("#", headerText)).WithStyle(&headerCell),
		col.New(5).Add(text.New("Item", headerTextLeft)).WithStyle(&headerCell),
		col.New(3).Add(text.New("Visits", headerText)).WithStyle(&headerCell),
	}
	for _, kind := range reactionColumns {
		cols = append(cols, col.New(1).Add(text.New(kind, headerText)).WithStyle(&headerCell))
	}
	m.AddRows(row.New(8).Add(cols...))
}

func addAnalyticsRow(m core.Maroto, r AnalyticsRow, shaded bool) {
	base := props.Text{Size: 8, Align: align.Center}
	left := base
	left.Align = align.Left

	cols := []core.Col{
		col.New(1).Add(text.New(strconv.Itoa(r.Index), base)),
		col.New(5).Add(text.New(r.Name, left)),
		col.New(3).Add(text.New(strconv.Itoa(r.Visits), base)),
	}
	for _, kind := range reactionColumns {
		cols = append(cols, col.New(1).Add(text.New(strconv.Itoa(r.Reactions[kind]), base)))
	}

	if shaded {
		style := &props.Cell{BackgroundColor: &props.Color{Red: 245, Green: 245, Blue: 245}}
		for i := range cols {
			cols[i] = cols[i].WithStyle(style)
		}
	}
	m.AddRows(row.New(7).Add(cols...))
}

func addAnalyticsTotals(m core.Maroto, data *AnalyticsData) {
	m.AddRows(row.New(6))

	summaryCell := &props.Cell{BackgroundColor: &props.Color{Red: 240, Green: 240, Blue: 240}}
	label := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Right}
	value := props.Text{Size: 9, Style: fontstyle.Bold, Align: align.Center}

	cols := []core.Col{
		col.New(6).Add(text.New("Totals", label)).WithStyle(summaryCell),
		col.New(3).Add(text.New(strconv.Itoa(data.TotalVisits), value)).WithStyle(summaryCell),
	}
	for _, kind := range reactionColumns {
		cols = append(cols, col.New(1).Add(text.New(strconv.Itoa(data.TotalReactions[kind]), value)).WithStyle(summaryCell))
	}
	m.AddRows(row.New(8).Add(cols...))
}
