package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"merch-forecast/internal/csvio"
	"merch-forecast/internal/domain"
	"merch-forecast/internal/showinput"
	"merch-forecast/internal/tourdata"
)

func main() {
	app := &cli.App{
		Name:  "showcsv",
		Usage: "expand a merch inventory export into prediction input rows, one per item and upcoming show",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "inventory",
				Usage:    "inventory CSV export, named after the band (e.g. air_supply.csv)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "tour-data",
				Usage:    "tour schedule CSV",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "genre-map",
				Usage:    "band to genre mapping CSV",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "output path (default: <inventory>_for_upcoming_shows.csv)",
			},
		},
		Action: runBuild,
	}

	if err := app.Run(os.Args); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func runBuild(cctx *cli.Context) error {
	inventoryPath := cctx.String("inventory")

	inventory, err := readTable(inventoryPath)
	if err != nil {
		return fmt.Errorf("read inventory: %w", err)
	}

	genres, err := readWith(cctx.String("genre-map"), tourdata.LoadGenreMap)
	if err != nil {
		return fmt.Errorf("read genre map: %w", err)
	}

	tour, err := readWith(cctx.String("tour-data"), tourdata.Parse)
	if err != nil {
		return fmt.Errorf("read tour data: %w", err)
	}

	out, err := showinput.Build(inventoryPath, inventory, genres, tour)
	if err != nil {
		return err
	}

	outPath := cctx.String("out")
	if outPath == "" {
		outPath = strings.TrimSuffix(inventoryPath, filepath.Ext(inventoryPath)) + "_for_upcoming_shows.csv"
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := csvio.Write(f, out); err != nil {
		f.Close()
		return fmt.Errorf("write output: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	fmt.Printf("wrote %d rows to %s\n", out.Len(), outPath)
	return nil
}

func readTable(path string) (*domain.Table, error) {
	return readWith(path, csvio.Read)
}

func readWith[T any](path string, parse func(io.Reader) (T, error)) (T, error) {
	var zero T

	f, err := os.Open(path)
	if err != nil {
		return zero, err
	}
	defer f.Close()

	return parse(f)
}
