package epg

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/net/html"

	"telaviva/models"
)

// mi.tv renders a channel's schedule as <li> rows each carrying a
// <span class="time"> and an <h2 class="title">. Like meuguia, only start
// times are published.
func parseMiTV(root *html.Node, code string, base time.Time) ([]models.Program, error) {
	rows := findAll(root, func(n *html.Node) bool {
		if !isElement(n, "li") {
			return false
		}
		return findFirst(n, func(c *html.Node) bool {
			return isElement(c, "span") && hasClass(c, "time")
		}) != nil
	})
	if len(rows) == 0 {
		return nil, errors.New("no listing rows found")
	}

	type rawEntry struct {
		title string
		start time.Time
	}
	var entries []rawEntry
	var prev time.Time
	dayOffset := 0

	for _, row := range rows {
		timeNode := findFirst(row, func(n *html.Node) bool {
			return isElement(n, "span") && hasClass(n, "time")
		})
		titleNode := findFirst(row, func(n *html.Node) bool {
			return isElement(n, "h2") && hasClass(n, "title")
		})
		if titleNode == nil {
			// Some layouts drop the class from the heading.
			titleNode = findFirst(row, func(n *html.Node) bool { return isElement(n, "h2") })
		}
		if timeNode == nil || titleNode == nil {
			continue
		}
		start, ok := parseClock(nodeText(timeNode), base)
		if !ok {
			continue
		}
		start = start.AddDate(0, 0, dayOffset)
		if !prev.IsZero() && start.Before(prev) {
			dayOffset++
			start = start.AddDate(0, 0, 1)
		}
		prev = start

		title := nodeText(titleNode)
		if title == "" {
			continue
		}
		entries = append(entries, rawEntry{title: title, start: start})
	}

	if len(entries) == 0 {
		return nil, errors.New("no parsable programs")
	}

	programs := make([]models.Program, len(entries))
	for i, e := range entries {
		end := e.start.Add(openEndedProgramLength)
		if i+1 < len(entries) {
			end = entries[i+1].start
		}
		programs[i] = models.Program{
			ID:    fmt.Sprintf("%s-%d", code, e.start.Unix()),
			Title: e.title,
			Start: e.start,
			End:   end,
		}
	}
	return programs, nil
}
