package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"time"
)

// ANSI Colors
var (
	CYAN   = "\033[0;36m"
	GREEN  = "\033[0;32m"
	YELLOW = "\033[1;33m"
	GRAY   = "\033[0;90m"
	BOLD   = "\033[1m"
	NC     = "\033[0m"
)

func init() {
	if runtime.GOOS == "windows" {
		if os.Getenv("WT_SESSION") == "" && os.Getenv("TERM_PROGRAM") != "vscode" {
			CYAN, GREEN, YELLOW, GRAY, BOLD, NC = "", "", "", "", "", ""
		}
	}
}

// Wire shapes matching the route-svc request JSON. Kept local so the
// script stays buildable on its own; the tags are the contract.

// Segment is one generated road segment
type Segment struct {
	ID       string  `json:"id"`
	StartX   float64 `json:"start_x"`
	StartY   float64 `json:"start_y"`
	EndX     float64 `json:"end_x"`
	EndY     float64 `json:"end_y"`
	RoadType string  `json:"road_type"`
	Density  string  `json:"density"`
}

// Event is one generated map event
type Event struct {
	ID      string    `json:"id"`
	Name    string    `json:"name,omitempty"`
	X       float64   `json:"x"`
	Y       float64   `json:"y"`
	Impact  string    `json:"impact"`
	Status  string    `json:"status"`
	EndDate time.Time `json:"end_date"`
}

// Simulation is the optional request context
type Simulation struct {
	TimeOfDay        string `json:"time_of_day,omitempty"`
	DayType          string `json:"day_type,omitempty"`
	WeatherCondition string `json:"weather_condition,omitempty"`
	RoutingStrategy  string `json:"routing_strategy,omitempty"`
}

// Request is the generated route request
type Request struct {
	CallerID   string      `json:"caller_id,omitempty"`
	Algorithm  string      `json:"algorithm,omitempty"`
	StartX     float64     `json:"start_x"`
	StartY     float64     `json:"start_y"`
	EndX       float64     `json:"end_x"`
	EndY       float64     `json:"end_y"`
	Segments   []Segment   `json:"segments"`
	Simulation *Simulation `json:"simulation_params,omitempty"`
	Events     []Event     `json:"events,omitempty"`
}

// MapGenerator builds grid-shaped road maps
type MapGenerator struct {
	cols         int
	rows         int
	spacing      float64
	sparsity     float64
	diagonals    float64
	highwayEvery int
	eventCount   int
	eventEnd     time.Time
	rng          *rand.Rand
}

// NewMapGenerator creates a generator seeded for reproducible output
func NewMapGenerator(cols, rows int, spacing float64, seed int64) *MapGenerator {
	return &MapGenerator{
		cols:         cols,
		rows:         rows,
		spacing:      spacing,
		sparsity:     0.15,
		diagonals:    0.1,
		highwayEvery: 4,
		rng:          rand.New(rand.NewSource(seed)),
	}
}

// Generate produces a request routing from the bottom-left corner of the
// grid to the top-right one.
//
// Intersections sit at (col*spacing, row*spacing). Horizontal and
// vertical segments connect neighbours; interior segments are dropped
// with probability sparsity, diagonals added with probability diagonals.
// Edges along the bottom row and the rightmost column are always kept,
// so the two corners stay connected at any sparsity.
func (g *MapGenerator) Generate() *Request {
	var segments []Segment
	n := 0

	add := func(x1, y1, x2, y2 float64, roadType string) {
		n++
		segments = append(segments, Segment{
			ID:       fmt.Sprintf("s%04d", n),
			StartX:   x1 * g.spacing,
			StartY:   y1 * g.spacing,
			EndX:     x2 * g.spacing,
			EndY:     y2 * g.spacing,
			RoadType: roadType,
			Density:  g.pickDensity(roadType),
		})
	}

	for row := 0; row < g.rows; row++ {
		for col := 0; col < g.cols; col++ {
			// Horizontal segment to the right neighbour.
			if col < g.cols-1 {
				keep := row == 0 || g.rng.Float64() >= g.sparsity
				if keep {
					add(float64(col), float64(row), float64(col+1), float64(row),
						g.pickRoadType(row))
				}
			}
			// Vertical segment to the upper neighbour.
			if row < g.rows-1 {
				keep := col == g.cols-1 || g.rng.Float64() >= g.sparsity
				if keep {
					add(float64(col), float64(row), float64(col), float64(row+1),
						g.pickRoadType(col))
				}
			}
			// Occasional diagonal shortcut through the cell.
			if col < g.cols-1 && row < g.rows-1 && g.rng.Float64() < g.diagonals {
				add(float64(col), float64(row), float64(col+1), float64(row+1),
					"RESIDENTIAL")
			}
		}
	}

	req := &Request{
		StartX:   0,
		StartY:   0,
		EndX:     float64(g.cols-1) * g.spacing,
		EndY:     float64(g.rows-1) * g.spacing,
		Segments: segments,
		Events:   g.generateEvents(),
	}
	return req
}

// pickRoadType makes every highwayEvery-th grid line a highway corridor
// and mixes normal and residential streets elsewhere.
func (g *MapGenerator) pickRoadType(line int) string {
	if g.highwayEvery > 0 && line%g.highwayEvery == 0 {
		return "HIGHWAY"
	}
	if g.rng.Float64() < 0.3 {
		return "RESIDENTIAL"
	}
	return "NORMAL"
}

// pickDensity returns a weighted traffic density. Highways lean lighter:
// congestion on them is rarer but not impossible.
func (g *MapGenerator) pickDensity(roadType string) string {
	v := g.rng.Float64()
	if roadType == "HIGHWAY" {
		v *= 0.8
	}
	switch {
	case v < 0.35:
		return "LOW"
	case v < 0.70:
		return "MEDIUM"
	case v < 0.90:
		return "HIGH"
	default:
		return "CONGESTED"
	}
}

var eventNames = []string{"roadworks", "street fair", "closure", "accident", "parade"}

// generateEvents scatters ongoing events over interior intersections.
func (g *MapGenerator) generateEvents() []Event {
	if g.eventCount <= 0 {
		return nil
	}
	events := make([]Event, 0, g.eventCount)
	for i := 0; i < g.eventCount; i++ {
		col := 1 + g.rng.Intn(maxInt(g.cols-2, 1))
		row := 1 + g.rng.Intn(maxInt(g.rows-2, 1))
		impact := "MEDIUM"
		switch v := g.rng.Float64(); {
		case v < 0.4:
			impact = "LOW"
		case v > 0.8:
			impact = "HIGH"
		}
		events = append(events, Event{
			ID:      fmt.Sprintf("e%02d", i+1),
			Name:    eventNames[g.rng.Intn(len(eventNames))],
			X:       float64(col) * g.spacing,
			Y:       float64(row) * g.spacing,
			Impact:  impact,
			Status:  "ONGOING",
			EndDate: g.eventEnd,
		})
	}
	return events
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func printSummary(req *Request, seed int64, cols, rows int) {
	byType := map[string]int{}
	for _, s := range req.Segments {
		byType[s.RoadType]++
	}
	fmt.Fprintf(os.Stderr, "%sGenerated road map%s %s(seed %d)%s\n", BOLD, NC, GRAY, seed, NC)
	fmt.Fprintf(os.Stderr, "  %sGrid:%s     %dx%d intersections\n", CYAN, NC, cols, rows)
	fmt.Fprintf(os.Stderr, "  %sSegments:%s %d (highway %d, normal %d, residential %d)\n",
		CYAN, NC, len(req.Segments),
		byType["HIGHWAY"], byType["NORMAL"], byType["RESIDENTIAL"])
	fmt.Fprintf(os.Stderr, "  %sEvents:%s   %d\n", CYAN, NC, len(req.Events))
	fmt.Fprintf(os.Stderr, "  %sRoute:%s    (%.0f, %.0f) -> (%.0f, %.0f)\n",
		CYAN, NC, req.StartX, req.StartY, req.EndX, req.EndY)
}

func main() {
	cols := flag.Int("cols", 10, "Grid columns (intersections per row)")
	rows := flag.Int("rows", 10, "Grid rows")
	spacing := flag.Float64("spacing", 10.0, "Distance between neighbouring intersections")
	seed := flag.Int64("seed", 42, "Random seed (same seed, same map)")
	sparsity := flag.Float64("sparsity", 0.15, "Probability of dropping an interior segment")
	diagonals := flag.Float64("diagonals", 0.1, "Probability of a diagonal shortcut per cell")
	highwayEvery := flag.Int("highway-every", 4, "Every Nth grid line is a highway (0 to disable)")
	eventCount := flag.Int("events", 0, "Number of ongoing events to scatter")
	eventEnd := flag.String("event-end", "2030-01-01T00:00:00Z", "Event end date (RFC3339)")
	algorithm := flag.String("algorithm", "", "Request algorithm: dijkstra, astar (empty for service default)")
	caller := flag.String("caller", "", "Request caller_id")
	timeOfDay := flag.String("time-of-day", "", "Context: MORNING, AFTERNOON, EVENING, NIGHT")
	dayType := flag.String("day-type", "", "Context: WEEKDAY, WEEKEND, HOLIDAY")
	weather := flag.String("weather", "", "Context: CLEAR, RAIN, SNOW, FOG")
	strategy := flag.String("strategy", "", "Context: SHORTEST_PATH, FASTEST_PATH, AVOID_CONGESTION")
	output := flag.String("output", "", "Output file (default: stdout)")
	compact := flag.Bool("compact", false, "Emit compact JSON instead of indented")
	flag.Parse()

	if *cols < 2 || *rows < 2 {
		fmt.Fprintf(os.Stderr, "%sgrid must be at least 2x2%s\n", YELLOW, NC)
		os.Exit(2)
	}
	end, err := time.Parse(time.RFC3339, *eventEnd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%sinvalid -event-end: %v%s\n", YELLOW, err, NC)
		os.Exit(2)
	}

	gen := NewMapGenerator(*cols, *rows, *spacing, *seed)
	gen.sparsity = *sparsity
	gen.diagonals = *diagonals
	gen.highwayEvery = *highwayEvery
	gen.eventCount = *eventCount
	gen.eventEnd = end

	req := gen.Generate()
	req.Algorithm = *algorithm
	req.CallerID = *caller
	if *timeOfDay != "" || *dayType != "" || *weather != "" || *strategy != "" {
		req.Simulation = &Simulation{
			TimeOfDay:        *timeOfDay,
			DayType:          *dayType,
			WeatherCondition: *weather,
			RoutingStrategy:  *strategy,
		}
	}

	var data []byte
	if *compact {
		data, err = json.Marshal(req)
	} else {
		data, err = json.MarshalIndent(req, "", "  ")
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal failed: %v\n", err)
		os.Exit(1)
	}
	data = append(data, '\n')

	if *output == "" {
		os.Stdout.Write(data)
	} else {
		if err := os.WriteFile(*output, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "write failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "%s✓%s Written to %s%s%s\n", GREEN, NC, BOLD, *output, NC)
	}
	printSummary(req, *seed, *cols, *rows)
}
