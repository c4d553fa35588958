package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/triptrop/client/internal/content"
	"github.com/triptrop/client/internal/itinerary"
	"github.com/triptrop/client/internal/planner"
	"github.com/triptrop/client/internal/search"
	logx "github.com/triptrop/client/pkg/logger"
)

func main() {
	fmt.Println("Testing travel planner client...")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// Load .env file
	if err := godotenv.Load(".env"); err != nil {
		fmt.Printf("Warning: Could not load .env file: %v\n", err)
	}

	// Load structured config from env
	var cfg planner.Config
	if err := envconfig.Process("", &cfg); err != nil {
		logx.Fatal().Err(err).Msg("failed to process environment config")
	}
	logx.Init(logx.LoggerOpts{Environment: cfg.Env})

	p, err := planner.New(ctx, cfg)
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to build planner")
	}
	defer p.Close()

	if cfg.Auth.AccessToken == "" {
		fmt.Printf("No ACCESS_TOKEN set, sign in at %s and export the token\n", p.Session.LoginURL())
		return
	}
	user, err := p.SignIn(ctx, cfg.Auth.AccessToken)
	if err != nil {
		logx.Fatal().Err(err).Msg("sign in failed")
	}
	fmt.Printf("Signed in as %s\n", user.Email)

	// ====================================================
	// One search of each kind
	flights, err := p.Flights.Search(ctx, search.FlightQuery{
		Origin:        "JFK",
		Destination:   "LHR",
		DepartureDate: "2024-06-01",
	})
	report("flights", len(flights), err)
	for _, f := range flights {
		fmt.Printf("  %s %s %s -> %s  $%.2f  direct=%t\n", f.ID, f.Airline, f.DepartureTime, f.ArrivalTime, f.Price, f.Direct())
	}

	hotels, err := p.Hotels.Search(ctx, search.HotelQuery{Destination: "London", CheckIn: "2024-06-01", CheckOut: "2024-06-05"})
	report("hotels", len(hotels), err)

	experiences, err := p.Experiences.Search(ctx, search.ExperienceQuery{Destination: "London", Category: search.CategoryCulture})
	report("experiences", len(experiences), err)

	// ====================================================
	// Generate, persist and render an itinerary
	fmt.Println("\nGenerating itinerary...")
	generated, err := p.Itineraries.Generate(ctx, itinerary.GenerateRequest{
		Destination: "London",
		StartDate:   "2024-06-01",
		EndDate:     "2024-06-03",
		Budget:      itinerary.BudgetMedium,
		Preferences: &itinerary.Preferences{Activities: []string{"museums", "food"}},
	})
	if err != nil {
		logx.Fatal().Err(err).Msg("generation failed")
	}

	c, err := generated.Content()
	if err != nil {
		logx.Warn().Err(err).Msg("itinerary content could not be parsed")
	}
	render(generated.Title, c)

	saved, err := p.Itineraries.Create(ctx, itinerary.DraftFrom(*generated))
	if err != nil {
		logx.Fatal().Err(err).Msg("saving itinerary failed")
	}
	p.Itineraries.Remember(*saved)
	fmt.Printf("Saved itinerary %s, %d in collection\n", saved.ID, len(p.Itineraries.Collection()))

	fmt.Println("All planner calls completed")
}

func report(kind string, n int, err error) {
	if err != nil {
		fmt.Printf("%s search failed: %v\n", kind, err)
		return
	}
	fmt.Printf("%s: %d results\n", kind, n)
}

func render(title string, c content.Content) {
	fmt.Println(strings.Repeat("=", 40))
	fmt.Println(title)
	if c.Overview != "" {
		fmt.Println(c.Overview)
	}
	if c.GenerationError != "" {
		fmt.Printf("Generation error: %s\n", c.GenerationError)
	}

	switch body := c.Body.(type) {
	case content.StructuredDays:
		for _, d := range body.Days {
			fmt.Printf("\n%s\n", d.Label)
			for _, a := range d.Activities {
				fmt.Printf("  %s\n", a.Line())
			}
			if d.Tips != "" {
				fmt.Printf("  Tips: %s\n", d.Tips)
			}
		}
	case content.RawText:
		fmt.Println(body.Text)
	case content.Empty:
		fmt.Println("(no plan content)")
	}

	if c.TotalEstimatedCost != "" {
		fmt.Printf("\nEstimated cost: %s\n", c.TotalEstimatedCost)
	}
	for _, tip := range c.LocalTips {
		fmt.Printf("- %s\n", tip)
	}
	fmt.Println(strings.Repeat("=", 40))
}
