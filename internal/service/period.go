package service

import (
	"strconv"
	"strings"
	"time"

	"verokai-pos/internal/model"
)

// PeriodQuery holds the raw fecha / mes / año query parameters.
type PeriodQuery struct {
	Date  string
	Month string
	Year  string
}

// ParsePeriod turns the query into a half-open range in loc. An exact date
// wins over month and year; a month without a year uses the current year in
// loc; a year alone covers the whole year. No parameters means no filter.
func ParsePeriod(q PeriodQuery, loc *time.Location, now time.Time) (model.Period, error) {
	if loc == nil {
		loc = time.UTC
	}
	date := strings.TrimSpace(q.Date)
	month := strings.TrimSpace(q.Month)
	year := strings.TrimSpace(q.Year)

	if date != "" {
		day, err := time.ParseInLocation("2006-01-02", date, loc)
		if err != nil {
			return model.Period{}, invalid("Fecha inválida, use el formato AAAA-MM-DD")
		}
		end := day.AddDate(0, 0, 1)
		return model.Period{From: &day, To: &end}, nil
	}

	if month == "" && year == "" {
		return model.Period{}, nil
	}

	y := now.In(loc).Year()
	if year != "" {
		parsed, err := strconv.Atoi(year)
		if err != nil || parsed < 1 || parsed > 9999 {
			return model.Period{}, invalid("Año inválido")
		}
		y = parsed
	}

	if month == "" {
		start := time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
		end := start.AddDate(1, 0, 0)
		return model.Period{From: &start, To: &end}, nil
	}

	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return model.Period{}, invalid("Mes inválido, debe estar entre 1 y 12")
	}
	start := time.Date(y, time.Month(m), 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0)
	return model.Period{From: &start, To: &end}, nil
}
