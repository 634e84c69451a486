// Package worlds holds the registry of generated planets and the factory
// that creates them.
package worlds

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// World is the immutable parameter set of one generated planet.
type World struct {
	ID          uint64
	Name        string
	Seed        string
	SeaLevel    float64
	Temperature float64
	Humidity    float64
}

// String renders a one-line description for logs and the CLI.
func (w World) String() string {
	return fmt.Sprintf("ID: %d Name: %s Seed: %s Sea Level: %s Temperature: %s Humidity: %s",
		w.ID, w.Name, w.Seed,
		formatFloat(w.SeaLevel), formatFloat(w.Temperature), formatFloat(w.Humidity))
}

// View is the wire form of a World. Every value is a string, numeric ones
// included.
type View struct {
	Name        string `json:"name"`
	ID          string `json:"id"`
	Seed        string `json:"seed"`
	SeaLevel    string `json:"sea_level"`
	Temperature string `json:"temperature"`
	Humidity    string `json:"humidity"`
}

// View converts w to its wire form.
func (w World) View() View {
	return View{
		Name:        w.Name,
		ID:          strconv.FormatUint(w.ID, 10),
		Seed:        w.Seed,
		SeaLevel:    formatFloat(w.SeaLevel),
		Temperature: formatFloat(w.Temperature),
		Humidity:    formatFloat(w.Humidity),
	}
}

// MarshalJSON encodes w as its View.
func (w World) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.View())
}

// formatFloat uses the shortest representation that round-trips, so 50.0
// becomes "50" and 42.125 stays "42.125".
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
