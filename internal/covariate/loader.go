package covariate

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const float32ByteSize = 4

var (
	// ErrNoDataset means no usable dataset was found. Callers treat this as
	// "no covariates", not as a failure.
	ErrNoDataset = errors.New("covariate: no dataset found")

	// ErrInvalidDataset means a manifest or variable file is malformed.
	ErrInvalidDataset = errors.New("covariate: invalid dataset")
)

// Manifest describes a dataset on disk. Variable files are zstd-compressed
// little-endian float32 arrays in C order [time, lat, lon], resolved
// relative to the manifest's directory.
type Manifest struct {
	Lat       []float64  `json:"lat"`
	Lon       []float64  `json:"lon"`
	TimeSteps int        `json:"time_steps"`
	FillValue *float64   `json:"fill_value,omitempty"`
	Variables []Variable `json:"variables"`
}

// Variable names one variable file in a manifest.
type Variable struct {
	Name string `json:"name"`
	File string `json:"file"`
}

// LoadConfig configures Load.
type LoadConfig struct {
	// Dir is searched recursively for *.json manifests.
	Dir string

	// MaxVariables keeps only the first N variables. Default: DefaultMaxVariables.
	MaxVariables int

	Logger zerolog.Logger
}

// Load walks cfg.Dir in lexical order and returns the first dataset that
// decodes. It returns ErrNoDataset when the directory is unset, missing, or
// holds no usable manifest.
func Load(ctx context.Context, cfg LoadConfig) (*Grid, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("%w: no directory configured", ErrNoDataset)
	}
	if _, err := os.Stat(cfg.Dir); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoDataset, err)
	}

	var manifests []string
	err := filepath.WalkDir(cfg.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".json") {
			manifests = append(manifests, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: walk %s: %v", ErrNoDataset, cfg.Dir, err)
	}

	for _, path := range manifests {
		grid, err := LoadManifest(ctx, path, cfg.MaxVariables)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			cfg.Logger.Warn().Err(err).Str("manifest", path).Msg("skipping unreadable covariate dataset")
			continue
		}
		cfg.Logger.Info().
			Str("manifest", path).
			Strs("variables", grid.names).
			Int("lat_points", len(grid.lat)).
			Int("lon_points", len(grid.lon)).
			Msg("loaded covariate grid")
		return grid, nil
	}

	return nil, fmt.Errorf("%w: no manifest under %s", ErrNoDataset, cfg.Dir)
}

// LoadManifest decodes the dataset described by the manifest at path,
// keeping at most maxVars variables in manifest order.
func LoadManifest(ctx context.Context, path string, maxVars int) (*Grid, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%w: decode manifest: %v", ErrInvalidDataset, err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}

	if maxVars <= 0 {
		maxVars = DefaultMaxVariables
	}
	vars := m.Variables
	if len(vars) > maxVars {
		vars = vars[:maxVars]
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	defer decoder.Close()

	base := filepath.Dir(path)
	fields := make([][]float64, len(vars))

	g, ctx := errgroup.WithContext(ctx)
	for i, v := range vars {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			field, err := m.decodeVariable(decoder, filepath.Join(base, v.File))
			if err != nil {
				return fmt.Errorf("variable %q: %w", v.Name, err)
			}
			fields[i] = field
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	grid := &Grid{
		lat:    m.Lat,
		lon:    m.Lon,
		names:  make([]string, len(vars)),
		fields: make(map[string][]float64, len(vars)),
	}
	for i, v := range vars {
		grid.names[i] = v.Name
		grid.fields[v.Name] = fields[i]
	}
	return grid, nil
}

func (m *Manifest) validate() error {
	switch {
	case len(m.Lat) == 0 || len(m.Lon) == 0:
		return fmt.Errorf("%w: empty coordinate axis", ErrInvalidDataset)
	case m.TimeSteps <= 0:
		return fmt.Errorf("%w: time_steps must be positive", ErrInvalidDataset)
	case len(m.Variables) == 0:
		return fmt.Errorf("%w: no variables", ErrInvalidDataset)
	}
	for _, axis := range [][]float64{m.Lat, m.Lon} {
		for _, v := range axis {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: non-finite coordinate", ErrInvalidDataset)
			}
		}
		if !monotonic(axis) {
			return fmt.Errorf("%w: coordinate axis is not monotonic", ErrInvalidDataset)
		}
	}
	seen := make(map[string]bool, len(m.Variables))
	for _, v := range m.Variables {
		if v.Name == "" || v.File == "" {
			return fmt.Errorf("%w: variable needs name and file", ErrInvalidDataset)
		}
		if seen[v.Name] {
			return fmt.Errorf("%w: duplicate variable %q", ErrInvalidDataset, v.Name)
		}
		seen[v.Name] = true
	}
	return nil
}

// decodeVariable reads one variable file and averages it over time. Cells
// with no valid sample across all time steps are NaN.
func (m *Manifest) decodeVariable(decoder *zstd.Decoder, path string) ([]float64, error) {
	compressed, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data, err := decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: zstd decompress: %v", ErrInvalidDataset, err)
	}

	cells := len(m.Lat) * len(m.Lon)
	if want := m.TimeSteps * cells * float32ByteSize; len(data) != want {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidDataset, len(data), want)
	}

	sums := make([]float64, cells)
	counts := make([]int, cells)
	for t := range m.TimeSteps {
		for c := range cells {
			off := (t*cells + c) * float32ByteSize
			v := float64(math.Float32frombits(binary.LittleEndian.Uint32(data[off : off+float32ByteSize])))
			if math.IsNaN(v) || (m.FillValue != nil && v == float64(float32(*m.FillValue))) {
				continue
			}
			sums[c] += v
			counts[c]++
		}
	}

	mean := make([]float64, cells)
	for c := range mean {
		if counts[c] == 0 {
			mean[c] = math.NaN()
			continue
		}
		mean[c] = sums[c] / float64(counts[c])
	}
	return mean, nil
}
