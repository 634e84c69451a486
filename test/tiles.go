package test

import (
	"bytes"
	"fmt"
	"image"
	_ "image/png"
	"net/http"

	"golang.org/x/image/tiff"

	"github.com/lawnchairsociety/planetmap/internal/testclient"
)

// =============================================================================
// Group 2: Tiles
// =============================================================================

func decodeTile(resp *testclient.Response) (image.Image, error) {
	if resp.Status != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.Status)
	}
	if resp.ContentType == "image/tiff" {
		return tiff.Decode(bytes.NewReader(resp.Body))
	}
	img, _, err := image.Decode(bytes.NewReader(resp.Body))
	return img, err
}

// TestTileFetch fetches a deep tile and checks it decodes at 256x256.
func TestTileFetch(serverAddr string) TestResult {
	const testName = "Tile Fetch"

	client := testclient.NewTestClient(uniqueName("tile"), serverAddr)
	logAction(testName, "GET /tiles/1/6/12/20")
	resp, err := client.Tile("1", 6, 12, 20)
	if err != nil {
		return fail(testName, "Request failed: %v", err)
	}
	img, err := decodeTile(resp)
	if err != nil {
		return fail(testName, "Tile did not decode: %v", err)
	}
	b := img.Bounds()
	logResult(testName, b.Dx() == 256 && b.Dy() == 256, fmt.Sprintf("%dx%d %s", b.Dx(), b.Dy(), resp.ContentType))
	if b.Dx() != 256 || b.Dy() != 256 {
		return fail(testName, "Tile is %dx%d", b.Dx(), b.Dy())
	}
	return pass(testName, "%s tile, %d bytes", resp.ContentType, len(resp.Body))
}

// TestTileDeterminism fetches the same address twice.
func TestTileDeterminism(serverAddr string) TestResult {
	const testName = "Tile Determinism"

	client := testclient.NewTestClient(uniqueName("determinism"), serverAddr)
	first, err := client.Tile("1", 9, 100.5, -3)
	if err != nil {
		return fail(testName, "Request failed: %v", err)
	}
	second, err := client.Tile("2", 9, 100.5, -3)
	if err != nil {
		return fail(testName, "Request failed: %v", err)
	}
	if !bytes.Equal(first.Body, second.Body) {
		return fail(testName, "Same address produced different bytes")
	}
	return pass(testName, "Identical %d-byte tiles across worlds", len(first.Body))
}

// TestTileFallback checks malformed addresses render the (0,0,0) tile.
func TestTileFallback(serverAddr string) TestResult {
	const testName = "Tile Fallback"

	client := testclient.NewTestClient(uniqueName("fallback"), serverAddr)
	zero, err := client.Get("/tiles/0/0/0")
	if err != nil {
		return fail(testName, "Request failed: %v", err)
	}
	for _, path := range []string{"/tiles/abc", "/tiles/1/2/x/4"} {
		resp, err := client.Get(path)
		if err != nil {
			return fail(testName, "Request failed: %v", err)
		}
		logResult(testName, bytes.Equal(zero.Body, resp.Body), path)
		if !bytes.Equal(zero.Body, resp.Body) {
			return fail(testName, "%s did not fall back to the zero tile", path)
		}
	}
	return pass(testName, "Malformed addresses render the zero tile")
}

// TestShallowZoomIsUniform checks z=0 and z=1 tiles are solid (0,200,0).
func TestShallowZoomIsUniform(serverAddr string) TestResult {
	const testName = "Shallow Zoom Uniform"

	client := testclient.NewTestClient(uniqueName("shallow"), serverAddr)
	for _, z := range []uint32{0, 1} {
		resp, err := client.Tile("1", z, 0.3, 7)
		if err != nil {
			return fail(testName, "Request failed: %v", err)
		}
		img, err := decodeTile(resp)
		if err != nil {
			return fail(testName, "Tile did not decode: %v", err)
		}
		for _, pt := range []image.Point{{0, 0}, {128, 77}, {255, 255}} {
			r, g, b, _ := img.At(pt.X, pt.Y).RGBA()
			if r>>8 != 0 || g>>8 != 200 || b>>8 != 0 {
				return fail(testName, "z=%d pixel %v is (%d,%d,%d)", z, pt, r>>8, g>>8, b>>8)
			}
		}
	}
	return pass(testName, "z=0 and z=1 are uniform land")
}
