package epg

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/net/html"

	"telaviva/models"
)

// gatotv.com publishes full (start, end) pairs: the schedule table's rows
// carry two <time> cells followed by the program title cell.
func parseGatoTV(root *html.Node, code string, base time.Time) ([]models.Program, error) {
	rows := findAll(root, func(n *html.Node) bool {
		if !isElement(n, "tr") {
			return false
		}
		return len(findAll(n, func(c *html.Node) bool { return isElement(c, "time") })) >= 2
	})
	if len(rows) == 0 {
		return nil, errors.New("no schedule rows found")
	}

	var programs []models.Program
	dayOffset := 0
	var prev time.Time

	for _, row := range rows {
		times := findAll(row, func(n *html.Node) bool { return isElement(n, "time") })
		start, okStart := parseClock(nodeText(times[0]), base)
		end, okEnd := parseClock(nodeText(times[1]), base)
		if !okStart || !okEnd {
			continue
		}

		start = start.AddDate(0, 0, dayOffset)
		if !prev.IsZero() && start.Before(prev) {
			dayOffset++
			start = start.AddDate(0, 0, 1)
		}
		prev = start

		end = end.AddDate(0, 0, dayOffset)
		if !end.After(start) {
			end = end.AddDate(0, 0, 1)
		}

		title := rowTitle(row)
		if title == "" {
			continue
		}
		programs = append(programs, models.Program{
			ID:    fmt.Sprintf("%s-%d", code, start.Unix()),
			Title: title,
			Start: start,
			End:   end,
		})
	}

	if len(programs) == 0 {
		return nil, errors.New("no parsable programs")
	}
	return programs, nil
}

// rowTitle pulls the program name out of a schedule row: the text of the
// first cell that holds no <time> element.
func rowTitle(row *html.Node) string {
	cells := findAll(row, func(n *html.Node) bool { return isElement(n, "td") })
	for _, cell := range cells {
		if findFirst(cell, func(n *html.Node) bool { return isElement(n, "time") }) != nil {
			continue
		}
		if text := nodeText(cell); text != "" {
			return text
		}
	}
	return ""
}
