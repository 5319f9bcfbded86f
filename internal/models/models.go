package models

import (
	"fmt"
	"strings"
)

const (
	MinRating = 0
	MaxRating = 100
)

// ClampRating constrains r to [MinRating, MaxRating].
func ClampRating(r int) int {
	return max(MinRating, min(MaxRating, r))
}

type Actor struct {
	Name       string
	MoviesCast []string
}

// NewActor stores name as given. Callers are expected to normalize it first.
func NewActor(name string) *Actor {
	return &Actor{Name: name, MoviesCast: []string{}}
}

func (a *Actor) AddMovie(movie string) {
	a.MoviesCast = append(a.MoviesCast, movie)
}

func (a *Actor) HasMovie(movie string) bool {
	for _, m := range a.MoviesCast {
		if m == movie {
			return true
		}
	}
	return false
}

func (a *Actor) String() string {
	return fmt.Sprintf("Name: %s Movies Cast: [%s]", a.Name, strings.Join(a.MoviesCast, ", "))
}

// Movie keeps its ratings unexported so every write goes through ClampRating.
type Movie struct {
	name           string
	criticRating   int
	audienceRating int
}

func NewMovie(name string, criticRating, audienceRating int) *Movie {
	return &Movie{
		name:           strings.ToLower(strings.TrimSpace(name)),
		criticRating:   ClampRating(criticRating),
		audienceRating: ClampRating(audienceRating),
	}
}

func (m *Movie) Name() string {
	return m.name
}

func (m *Movie) CriticRating() int {
	return m.criticRating
}

func (m *Movie) AudienceRating() int {
	return m.audienceRating
}

func (m *Movie) SetCriticRating(r int) {
	m.criticRating = ClampRating(r)
}

func (m *Movie) SetAudienceRating(r int) {
	m.audienceRating = ClampRating(r)
}

func (m *Movie) String() string {
	return fmt.Sprintf("Name: %s Critic Rating: %d Audience Rating: %d", m.name, m.criticRating, m.audienceRating)
}
