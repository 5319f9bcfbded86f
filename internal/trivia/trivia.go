// Package trivia implements query and update operations over in-memory actor
// and movie collections.
//
// Every name-like argument is trimmed and lower-cased before it is compared
// against stored data. No operation returns an error: invalid input is
// clamped, defaulted, or produces an empty result.
package trivia

import (
	"strings"

	"github.com/mark-c-hall/movie-trivia/internal/models"
)

// GoodRating is the minimum critic and audience rating of a good movie.
const GoodRating = 85

type Comparison rune

const (
	Equal   Comparison = '='
	Greater Comparison = '>'
	Less    Comparison = '<'
)

func (c Comparison) Valid() bool {
	return c == Equal || c == Greater || c == Less
}

func (c Comparison) String() string {
	return string(c)
}

// ParseComparison accepts "=", ">", "<" and the aliases "eq", "gt", "lt".
// Anything else yields a Comparison for which Valid reports false.
func ParseComparison(s string) Comparison {
	switch normalize(s) {
	case "=", "eq":
		return Equal
	case ">", "gt":
		return Greater
	case "<", "lt":
		return Less
	}
	return 0
}

// Mean holds average critic and audience ratings.
type Mean struct {
	Critic   float64
	Audience float64
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// InsertActor adds movies to the named actor, creating the actor if needed.
// Movies already in the actor's cast are not added again.
func InsertActor(name string, movieNames []string, actors *[]*models.Actor) {
	name = normalize(name)

	var actor *models.Actor
	for _, a := range *actors {
		if strings.EqualFold(a.Name, name) {
			actor = a
			break
		}
	}

	isNew := actor == nil
	if isNew {
		actor = models.NewActor(name)
	}

	for _, movie := range movieNames {
		movie = normalize(movie)
		if !actor.HasMovie(movie) {
			actor.AddMovie(movie)
		}
	}

	if isNew {
		*actors = append(*actors, actor)
	}
}

// InsertRating sets the ratings of the named movie, creating it if needed.
// ratings[0] is the critic rating and ratings[1] the audience rating; missing
// elements default to 0.
func InsertRating(movieName string, ratings []int, movies *[]*models.Movie) {
	movieName = normalize(movieName)

	critic, audience := 0, 0
	if len(ratings) > 0 {
		critic = ratings[0]
	}
	if len(ratings) > 1 {
		audience = ratings[1]
	}

	for _, m := range *movies {
		if strings.EqualFold(m.Name(), movieName) {
			m.SetCriticRating(critic)
			m.SetAudienceRating(audience)
			return
		}
	}

	*movies = append(*movies, models.NewMovie(movieName, critic, audience))
}

// SelectWhereActorIs returns the cast lists of every actor named actorName,
// concatenated in collection order.
func SelectWhereActorIs(actorName string, actors []*models.Actor) []string {
	actorName = normalize(actorName)

	movies := []string{}
	for _, a := range actors {
		if strings.EqualFold(a.Name, actorName) {
			movies = append(movies, a.MoviesCast...)
		}
	}
	return movies
}

// SelectWhereMovieIs returns the names of actors cast in movieName.
func SelectWhereMovieIs(movieName string, actors []*models.Actor) []string {
	movieName = normalize(movieName)

	names := []string{}
	for _, a := range actors {
		if a.HasMovie(movieName) {
			names = append(names, a.Name)
		}
	}
	return names
}

// SelectWhereRatingIs returns the names of movies whose critic (or audience)
// rating compares to targetRating as requested. An invalid comparison or a
// target outside the rating range yields an empty result.
func SelectWhereRatingIs(comparison Comparison, targetRating int, isCritic bool, movies []*models.Movie) []string {
	names := []string{}
	if targetRating < models.MinRating || targetRating > models.MaxRating || !comparison.Valid() {
		return names
	}

	for _, m := range movies {
		rating := m.AudienceRating()
		if isCritic {
			rating = m.CriticRating()
		}

		var ok bool
		switch comparison {
		case Equal:
			ok = rating == targetRating
		case Greater:
			ok = rating > targetRating
		case Less:
			ok = rating < targetRating
		}
		if ok {
			names = append(names, m.Name())
		}
	}
	return names
}

// GetCoActors returns every actor who shares at least one movie with
// actorName, in order of first discovery.
func GetCoActors(actorName string, actors []*models.Actor) []string {
	actorName = normalize(actorName)

	coActors := []string{}
	seen := make(map[string]struct{})
	for _, a := range actors {
		if !strings.EqualFold(a.Name, actorName) {
			continue
		}
		for _, movie := range a.MoviesCast {
			for _, b := range actors {
				if strings.EqualFold(b.Name, actorName) || !b.HasMovie(movie) {
					continue
				}
				if _, ok := seen[b.Name]; ok {
					continue
				}
				seen[b.Name] = struct{}{}
				coActors = append(coActors, b.Name)
			}
		}
	}
	return coActors
}

// GetCommonMovie returns the movies of actor1 that actor2 was also cast in,
// in actor1's order.
func GetCommonMovie(actor1, actor2 string, actors []*models.Actor) []string {
	movies1 := SelectWhereActorIs(actor1, actors)
	movies2 := SelectWhereActorIs(actor2, actors)

	in2 := make(map[string]struct{}, len(movies2))
	for _, m := range movies2 {
		in2[m] = struct{}{}
	}

	common := []string{}
	for _, m := range movies1 {
		if _, ok := in2[m]; ok {
			common = append(common, m)
		}
	}
	return common
}

// GoodMovies returns the movies rated at least GoodRating by both critics and
// audience.
func GoodMovies(movies []*models.Movie) []string {
	names := []string{}
	for _, m := range movies {
		if m.CriticRating() >= GoodRating && m.AudienceRating() >= GoodRating {
			names = append(names, m.Name())
		}
	}
	return names
}

// GetCommonActors returns the actors cast in both movie1 and movie2.
func GetCommonActors(movie1, movie2 string, actors []*models.Actor) []string {
	movie1 = normalize(movie1)
	movie2 = normalize(movie2)

	names := []string{}
	for _, a := range actors {
		if a.HasMovie(movie1) && a.HasMovie(movie2) {
			names = append(names, a.Name)
		}
	}
	return names
}

// GetMean averages critic and audience ratings; an empty collection yields
// a zero Mean.
func GetMean(movies []*models.Movie) Mean {
	if len(movies) == 0 {
		return Mean{}
	}

	var critic, audience float64
	for _, m := range movies {
		critic += float64(m.CriticRating())
		audience += float64(m.AudienceRating())
	}

	n := float64(len(movies))
	return Mean{Critic: critic / n, Audience: audience / n}
}
