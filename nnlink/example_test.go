package nnlink_test

import (
	"context"
	"fmt"

	"github.com/avisser/celltrack/core"
	"github.com/avisser/celltrack/nnlink"
)

// ExampleLink links two cells across one time step by nearest-neighbor
// distance. With the default tolerance only the closest candidate is
// kept, and it is marked preferred.
func ExampleLink() {
	positions := core.NewPositionCollection()
	for _, pos := range []core.Position{
		core.At(10, 10, 0, 1), core.At(11, 10, 0, 2), // cell a
		core.At(40, 10, 0, 1), core.At(41, 10, 0, 2), // cell b
	} {
		positions.Add(pos)
	}

	graph, err := nnlink.Link(context.Background(), positions, nil)
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	fmt.Println("links:", graph.EdgeCount())
	fmt.Println("preferred pasts of a at t2:", len(graph.PreferredPasts(core.At(11, 10, 0, 2))))
	// Output:
	// links: 2
	// preferred pasts of a at t2: 1
}
