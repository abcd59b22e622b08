// Package report reads and writes the single-line competitor record exchanged between the
// scoring and staking stages.
package report

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yourusername/odds-apex/internal/models"
	"github.com/yourusername/odds-apex/internal/pricing"
	"github.com/yourusername/odds-apex/internal/staking"
)

const separator = "|"

var (
	modelPattern    = regexp.MustCompile(`Model[:%]?\s*([0-9]+(?:\.[0-9]+)?)%`)
	liveOddsPattern = regexp.MustCompile(`LiveOdds[:]?\s*([0-9]+(?:\.[0-9]+)?)`)

	scorePattern    = regexp.MustCompile(`Score[:]?\s*([+-]?[0-9]+(?:\.[0-9]+)?)%`)
	marketPattern   = regexp.MustCompile(`Market[:]?\s*([+-]?[0-9]+(?:\.[0-9]+)?)%`)
	edgePattern     = regexp.MustCompile(`Edge[:]?\s*([+-]?[0-9]+(?:\.[0-9]+)?)%`)
	fairOddsPattern = regexp.MustCompile(`FairOdds[:]?\s*([0-9]+(?:\.[0-9]+)?)`)
	evPattern       = regexp.MustCompile(`\bEV[:]?\s*([+-]?[0-9]+(?:\.[0-9]+)?)`)
)

// Record is one parsed line. Percentages are held as printed, so Model 10.00 means 10%.
type Record struct {
	Name     string
	Model    decimal.Decimal
	LiveOdds decimal.Decimal

	Score    decimal.NullDecimal
	Market   decimal.NullDecimal
	Edge     decimal.NullDecimal
	FairOdds decimal.NullDecimal
	EV       decimal.NullDecimal
}

// Skip describes a line that was dropped.
type Skip struct {
	Line   int    `json:"line"`
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

// Format renders a valuation as a record line.
func Format(v models.Valuation) string {
	return fmt.Sprintf(
		"%s  |  Score: %6.2f%%  Model: %6.2f%%  Market: %6.2f%%  Edge: %+5.2f%%  FairOdds: %5.2f  LiveOdds: %4.2f  EV: %+.3f",
		v.Name, v.Score, v.Final*100, v.Implied*100, v.Edge*100, v.FairOdds, v.LiveOdds, v.EVBack,
	)
}

// ParseLine parses one record. It reports false for lines without a separator or without
// a readable Model percentage and LiveOdds price.
func ParseLine(line string) (Record, bool) {
	rec, reason := parseLine(line)
	return rec, reason == ""
}

func parseLine(line string) (Record, string) {
	name, rest, ok := strings.Cut(line, separator)
	if !ok {
		return Record{}, "missing separator"
	}

	model, ok := match(modelPattern, rest)
	if !ok {
		return Record{}, "missing model percentage"
	}
	odds, ok := match(liveOddsPattern, rest)
	if !ok {
		return Record{}, "missing live odds"
	}

	return Record{
		Name:     strings.TrimSpace(name),
		Model:    model,
		LiveOdds: odds,
		Score:    optional(scorePattern, rest),
		Market:   optional(marketPattern, rest),
		Edge:     optional(edgePattern, rest),
		FairOdds: optional(fairOddsPattern, rest),
		EV:       optional(evPattern, rest),
	}, ""
}

func match(re *regexp.Regexp, s string) (decimal.Decimal, bool) {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(m[1])
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func optional(re *regexp.Regexp, s string) decimal.NullDecimal {
	d, ok := match(re, s)
	return decimal.NullDecimal{Decimal: d, Valid: ok}
}

// MaxLineBytes bounds a single record line. Longer lines are skipped, not fatal.
const MaxLineBytes = 1 << 20

const previewBytes = 80

// Parse reads records line by line. Blank lines are ignored, malformed and over-long lines
// are reported as skips. Only read errors are returned.
func Parse(r io.Reader) ([]Record, []Skip, error) {
	var (
		records []Record
		skips   []Skip
	)

	br := bufio.NewReader(r)
	lineNo := 0
	for {
		raw, tooLong, err := readLine(br)
		if err == io.EOF {
			break
		}
		if err != nil {
			return records, skips, fmt.Errorf("failed to read report: %w", err)
		}
		lineNo++
		if tooLong {
			skips = append(skips, Skip{Line: lineNo, Text: preview(raw), Reason: "line too long"})
			continue
		}
		text := strings.TrimSpace(string(raw))
		if text == "" {
			continue
		}
		rec, reason := parseLine(text)
		if reason != "" {
			skips = append(skips, Skip{Line: lineNo, Text: text, Reason: reason})
			continue
		}
		records = append(records, rec)
	}
	return records, skips, nil
}

// readLine returns the next line without its terminator. A line over MaxLineBytes is
// drained to its end and only its first MaxLineBytes are kept.
func readLine(br *bufio.Reader) ([]byte, bool, error) {
	var (
		line    []byte
		tooLong bool
	)
	for {
		chunk, isPrefix, err := br.ReadLine()
		if err != nil {
			if err == io.EOF && (len(line) > 0 || tooLong) {
				return line, tooLong, nil
			}
			return nil, false, err
		}
		if !tooLong {
			if room := MaxLineBytes - len(line); len(chunk) > room {
				line = append(line, chunk[:room]...)
				tooLong = true
			} else {
				line = append(line, chunk...)
			}
		}
		if !isPrefix {
			return line, tooLong, nil
		}
	}
}

func preview(b []byte) string {
	if len(b) > previewBytes {
		b = b[:previewBytes]
	}
	return strings.TrimSpace(string(b)) + "..."
}

// Probability returns the model probability as a fraction.
func (r Record) Probability() float64 {
	return r.Model.Div(decimal.NewFromInt(100)).InexactFloat64()
}

// Odds returns the live decimal odds.
func (r Record) Odds() float64 {
	return r.LiveOdds.InexactFloat64()
}

// Valuation rebuilds the valuation a record describes. Market and EV figures are derived
// from Model and LiveOdds; Score and FairOdds are taken from the line when present.
func (r Record) Valuation() models.Valuation {
	p := r.Probability()
	odds := r.Odds()

	v := models.Valuation{
		Name:     r.Name,
		Final:    p,
		LiveOdds: odds,
	}
	if odds > 0 {
		v.Implied = 1 / odds
	}
	v.Edge = p - v.Implied
	v.EVBack = pricing.BackEV(p, odds)
	v.EVLay = pricing.LayEV(p, odds)
	if r.Score.Valid {
		v.Score = r.Score.Decimal.InexactFloat64()
	}
	if r.FairOdds.Valid {
		v.FairOdds = r.FairOdds.Decimal.InexactFloat64()
	}
	return v
}

// Candidate converts a record into a staking candidate with the lay EV recomputed.
func (r Record) Candidate() staking.Candidate {
	return staking.CandidateFromEntry(models.FieldEntry{Valuation: r.Valuation()})
}

// FieldFromRecords builds the unranked field for signal classification.
func FieldFromRecords(records []Record) []models.FieldEntry {
	field := make([]models.FieldEntry, 0, len(records))
	for _, r := range records {
		field = append(field, models.FieldEntry{Valuation: r.Valuation()})
	}
	return field
}
