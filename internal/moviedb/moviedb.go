// Package moviedb loads the cast listing and ratings listing into the in-memory
// collections queried by package trivia.
package moviedb

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mark-c-hall/movie-trivia/internal/models"
	"github.com/mark-c-hall/movie-trivia/internal/source"
	"github.com/mark-c-hall/movie-trivia/internal/trivia"
)

var ErrMalformedRecord = errors.New("malformed record")

type DB struct {
	Actors []*models.Actor
	Movies []*models.Movie
}

// Load reads the cast listing and the ratings listing through opener.
func Load(ctx context.Context, opener source.Opener, castLocation, ratingsLocation string) (*DB, error) {
	castFile, err := opener.Open(ctx, castLocation)
	if err != nil {
		return nil, fmt.Errorf("error opening cast listing: %w", err)
	}
	defer castFile.Close()

	actors, err := ParseCast(castFile)
	if err != nil {
		return nil, fmt.Errorf("error reading cast listing %s: %w", castLocation, err)
	}

	ratingsFile, err := opener.Open(ctx, ratingsLocation)
	if err != nil {
		return nil, fmt.Errorf("error opening ratings listing: %w", err)
	}
	defer ratingsFile.Close()

	movies, err := ParseRatings(ratingsFile)
	if err != nil {
		return nil, fmt.Errorf("error reading ratings listing %s: %w", ratingsLocation, err)
	}

	return &DB{Actors: actors, Movies: movies}, nil
}

func newReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	return reader
}

// ParseCast reads lines of the form "actor, movie1, movie2, ...". Blank lines
// and empty movie fields are skipped. A repeated actor merges into the first
// record for that name.
func ParseCast(r io.Reader) ([]*models.Actor, error) {
	reader := newReader(r)

	actors := []*models.Actor{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading cast record: %w", err)
		}

		if isBlank(record) {
			continue
		}
		if strings.TrimSpace(record[0]) == "" {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("%w: line %d: missing actor name", ErrMalformedRecord, line)
		}

		movies := make([]string, 0, len(record)-1)
		for _, m := range record[1:] {
			if strings.TrimSpace(m) != "" {
				movies = append(movies, m)
			}
		}

		trivia.InsertActor(record[0], movies, &actors)
	}

	return actors, nil
}

// ParseRatings reads "title,critic,audience" rows. A leading header row is
// skipped.
func ParseRatings(r io.Reader) ([]*models.Movie, error) {
	reader := newReader(r)

	movies := []*models.Movie{}
	first := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading ratings record: %w", err)
		}
		line, _ := reader.FieldPos(0)

		if isBlank(record) {
			continue
		}
		if first {
			first = false
			if isHeader(record) {
				continue
			}
		}

		if len(record) < 3 {
			return nil, fmt.Errorf("%w: line %d: expected 3 columns, got %d", ErrMalformedRecord, line, len(record))
		}

		critic, err := strconv.Atoi(strings.TrimSpace(record[1]))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: critic rating: %v", ErrMalformedRecord, line, err)
		}
		audience, err := strconv.Atoi(strings.TrimSpace(record[2]))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: audience rating: %v", ErrMalformedRecord, line, err)
		}

		trivia.InsertRating(record[0], []int{critic, audience}, &movies)
	}

	return movies, nil
}

func isBlank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

// isHeader reports whether both rating columns are non-numeric. A row with
// only one bad rating is a malformed data row, not a header.
func isHeader(record []string) bool {
	if len(record) < 3 {
		return false
	}
	_, criticErr := strconv.Atoi(strings.TrimSpace(record[1]))
	_, audienceErr := strconv.Atoi(strings.TrimSpace(record[2]))
	return criticErr != nil && audienceErr != nil
}

// ActorsInfo renders one actor per line.
func (db *DB) ActorsInfo() string {
	var b strings.Builder
	for _, a := range db.Actors {
		b.WriteString(a.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// MoviesInfo renders one movie per line.
func (db *DB) MoviesInfo() string {
	var b strings.Builder
	for _, m := range db.Movies {
		b.WriteString(m.String())
		b.WriteByte('\n')
	}
	return b.String()
}
