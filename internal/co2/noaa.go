package co2

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/carbontrack/carbontrack-server/internal/domain"
)

// Field positions in the NOAA trend files.
const (
	monthlyPPMField = 3 // year month decimal_date average ...
	weeklyPPMField  = 4 // year month day decimal_date average ...
)

// dataRows returns the whitespace-split, non-comment, non-blank lines of a NOAA text file.
func dataRows(body []byte) [][]string {
	var rows [][]string
	sc := bufio.NewScanner(bytes.NewReader(body))
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rows = append(rows, strings.Fields(line))
	}
	return rows
}

type monthlyRow struct {
	year  int
	month time.Month
	ppm   float64
}

func parseMonthlyRow(fields []string) (monthlyRow, error) {
	if len(fields) <= monthlyPPMField {
		return monthlyRow{}, fmt.Errorf("%w: expected at least %d fields, got %d", ErrMalformed, monthlyPPMField+1, len(fields))
	}
	year, err := strconv.Atoi(fields[0])
	if err != nil {
		return monthlyRow{}, fmt.Errorf("%w: year %q", ErrMalformed, fields[0])
	}
	month, err := strconv.Atoi(fields[1])
	if err != nil || month < 1 || month > 12 {
		return monthlyRow{}, fmt.Errorf("%w: month %q", ErrMalformed, fields[1])
	}
	ppm, err := strconv.ParseFloat(fields[monthlyPPMField], 64)
	if err != nil {
		return monthlyRow{}, fmt.Errorf("%w: ppm %q", ErrMalformed, fields[monthlyPPMField])
	}
	return monthlyRow{year: year, month: time.Month(month), ppm: ppm}, nil
}

// ParseMonthly reads the NOAA monthly mean file. The latest row with a
// measurement is the current reading; rows with a missing average (negative
// ppm, e.g. -99.99) are skipped. The trend compares against the same month
// one year earlier, found by searching backward. A missing year-ago row
// gives stable.
func ParseMonthly(body []byte) (*domain.CO2Reading, error) {
	rows := dataRows(body)
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no data rows", ErrMalformed)
	}

	// The final row must parse; it tells a real feed from an error page.
	last, err := parseMonthlyRow(rows[len(rows)-1])
	if err != nil {
		return nil, err
	}

	currentIdx := -1
	var current monthlyRow
	if last.ppm > 0 {
		currentIdx, current = len(rows)-1, last
	} else {
		for i := len(rows) - 2; i >= 0; i-- {
			row, err := parseMonthlyRow(rows[i])
			if err != nil || row.ppm <= 0 {
				continue
			}
			currentIdx, current = i, row
			break
		}
	}
	if currentIdx < 0 {
		return nil, fmt.Errorf("%w: no measurements", ErrMalformed)
	}

	trend := domain.TrendStable
	for i := currentIdx - 1; i >= 0; i-- {
		prev, err := parseMonthlyRow(rows[i])
		if err != nil || prev.ppm <= 0 {
			continue
		}
		if prev.year == current.year-1 && prev.month == current.month {
			trend = domain.CompareTrend(current.ppm, prev.ppm)
			break
		}
	}

	return &domain.CO2Reading{
		CO2Level: current.ppm,
		Date:     fmt.Sprintf("%s %d", current.month, current.year),
		Trend:    trend,
		Source:   SourceMonthly,
	}, nil
}

type weeklyRow struct {
	date time.Time
	ppm  float64
}

func parseWeeklyRow(fields []string) (weeklyRow, error) {
	if len(fields) <= weeklyPPMField {
		return weeklyRow{}, fmt.Errorf("%w: expected at least %d fields, got %d", ErrMalformed, weeklyPPMField+1, len(fields))
	}
	var ymd [3]int
	for i := range ymd {
		v, err := strconv.Atoi(fields[i])
		if err != nil {
			return weeklyRow{}, fmt.Errorf("%w: date field %q", ErrMalformed, fields[i])
		}
		ymd[i] = v
	}
	if ymd[1] < 1 || ymd[1] > 12 || ymd[2] < 1 || ymd[2] > 31 {
		return weeklyRow{}, fmt.Errorf("%w: date %d-%d-%d", ErrMalformed, ymd[0], ymd[1], ymd[2])
	}
	ppm, err := strconv.ParseFloat(fields[weeklyPPMField], 64)
	if err != nil {
		return weeklyRow{}, fmt.Errorf("%w: ppm %q", ErrMalformed, fields[weeklyPPMField])
	}
	return weeklyRow{
		date: time.Date(ymd[0], time.Month(ymd[1]), ymd[2], 0, 0, 0, 0, time.UTC),
		ppm:  ppm,
	}, nil
}

// ParseWeekly reads the NOAA weekly file. Rows with a missing measurement
// (negative ppm, e.g. -999.99) are skipped. The trend compares the latest
// measurement with the one immediately before it.
func ParseWeekly(body []byte) (*domain.CO2Reading, error) {
	var valid []weeklyRow
	for _, fields := range dataRows(body) {
		row, err := parseWeeklyRow(fields)
		if err != nil {
			return nil, err
		}
		if row.ppm > 0 {
			valid = append(valid, row)
		}
	}
	if len(valid) == 0 {
		return nil, fmt.Errorf("%w: no measurements", ErrMalformed)
	}

	current := valid[len(valid)-1]
	trend := domain.TrendStable
	if len(valid) > 1 {
		trend = domain.CompareTrend(current.ppm, valid[len(valid)-2].ppm)
	}

	return &domain.CO2Reading{
		CO2Level: current.ppm,
		Date:     current.date.Format(dayDateLayout),
		Trend:    trend,
		Source:   SourceWeekly,
	}, nil
}

// TextSource fetches url and parses the body with parse.
func TextSource(name, url string, f *Fetcher, parse func([]byte) (*domain.CO2Reading, error)) Source {
	return NewSource(name, func(ctx context.Context) (*domain.CO2Reading, error) {
		body, err := f.Get(ctx, url)
		if err != nil {
			return nil, err
		}
		return parse(body)
	})
}
