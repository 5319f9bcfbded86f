package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/mark-c-hall/movie-trivia/internal/config"
	"github.com/mark-c-hall/movie-trivia/internal/moviedb"
	"github.com/mark-c-hall/movie-trivia/internal/source"
	"github.com/mark-c-hall/movie-trivia/internal/trivia"
)

var castFlag = flag.String("cast", "", "cast listing path or URL (defaults to CAST_FILE)")
var ratingsFlag = flag.String("ratings", "", "ratings listing path or URL (defaults to RATINGS_FILE)")
var audienceFlag = flag.Bool("audience", false, "compare audience ratings instead of critic ratings in the rating command")

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage: %s [flags] [command [args]]\n\n", os.Args[0])
	fmt.Fprintln(out, "With no command, prints every actor and every movie.")
	fmt.Fprintln(out, "\nCommands:")
	fmt.Fprintln(out, "  actor NAME            movies the actor was cast in")
	fmt.Fprintln(out, "  movie NAME            actors cast in the movie")
	fmt.Fprintln(out, "  rating OP N           movies whose rating is =, > or < N")
	fmt.Fprintln(out, "  coactors NAME         actors who shared a movie with NAME")
	fmt.Fprintln(out, "  common-movies A B     movies both actors were cast in")
	fmt.Fprintln(out, "  common-actors M1 M2   actors cast in both movies")
	fmt.Fprintln(out, "  good                  movies rated at least 85 by critics and audience")
	fmt.Fprintln(out, "  mean                  mean critic and audience rating")
	fmt.Fprintln(out, "\nFlags:")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalln("Error loading config:", err)
	}
	if *castFlag != "" {
		cfg.Data.CastLocation = *castFlag
	}
	if *ratingsFlag != "" {
		cfg.Data.RatingsLocation = *ratingsFlag
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := moviedb.Load(ctx, source.NewClient(*cfg), cfg.Data.CastLocation, cfg.Data.RatingsLocation)
	if err != nil {
		log.Fatalln("Error loading movie data:", err)
	}

	if err := run(os.Stdout, db, flag.Args(), *audienceFlag); err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}
}

func run(w io.Writer, db *moviedb.DB, args []string, audience bool) error {
	if len(args) == 0 {
		fmt.Fprint(w, db.ActorsInfo())
		fmt.Fprint(w, db.MoviesInfo())
		return nil
	}

	cmd, args := args[0], args[1:]
	want := map[string]int{
		"actor": 1, "movie": 1, "rating": 2, "coactors": 1,
		"common-movies": 2, "common-actors": 2, "good": 0, "mean": 0,
	}
	n, ok := want[cmd]
	if !ok {
		return fmt.Errorf("unknown command %q", cmd)
	}
	if len(args) != n {
		return fmt.Errorf("%s expects %d argument(s), got %d", cmd, n, len(args))
	}

	var names []string
	switch cmd {
	case "actor":
		names = trivia.SelectWhereActorIs(args[0], db.Actors)
	case "movie":
		names = trivia.SelectWhereMovieIs(args[0], db.Actors)
	case "rating":
		target, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("rating target must be an integer: %w", err)
		}
		names = trivia.SelectWhereRatingIs(trivia.ParseComparison(args[0]), target, !audience, db.Movies)
	case "coactors":
		names = trivia.GetCoActors(args[0], db.Actors)
	case "common-movies":
		names = trivia.GetCommonMovie(args[0], args[1], db.Actors)
	case "common-actors":
		names = trivia.GetCommonActors(args[0], args[1], db.Actors)
	case "good":
		names = trivia.GoodMovies(db.Movies)
	case "mean":
		mean := trivia.GetMean(db.Movies)
		fmt.Fprintf(w, "critic: %.2f\naudience: %.2f\n", mean.Critic, mean.Audience)
		return nil
	}

	for _, name := range names {
		fmt.Fprintln(w, name)
	}
	return nil
}
