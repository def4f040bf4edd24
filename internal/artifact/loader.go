// Package artifact loads the pre-trained model bundle: manifest, predictor,
// scaler, and encoder. Loading happens once at process startup; everything
// the package returns is read-only afterwards.
package artifact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"merch-forecast/internal/domain"
)

type Loader struct {
	fetcher Fetcher
}

func NewLoader(fetcher Fetcher) *Loader {
	return &Loader{fetcher: fetcher}
}

// Load fetches the manifest and every artifact it references, parses them,
// and assembles the live bundle. Any failure aborts the load; the caller is
// expected to treat that as fatal before serving traffic.
func (l *Loader) Load(ctx context.Context, manifestURI string) (*domain.Bundle, error) {
	start := time.Now()

	raw, err := l.fetcher.Fetch(ctx, manifestURI)
	if err != nil {
		return nil, fmt.Errorf("fetch manifest: %w", err)
	}
	var manifest domain.Manifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if err := validateManifest(manifest); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", manifestURI, err)
	}

	bundle := &domain.Bundle{Manifest: manifest}
	bundle.Artifacts = append(bundle.Artifacts, domain.ArtifactInfo{
		Name: "manifest", URI: manifestURI, LoadedAt: time.Now(),
	})

	modelURI := ResolveRef(manifestURI, manifest.Artifacts.Model)
	modelRaw, err := l.fetcher.Fetch(ctx, modelURI)
	if err != nil {
		return nil, fmt.Errorf("fetch model: %w", err)
	}
	model, err := ParseModel(manifest.ModelType, modelRaw)
	if err != nil {
		return nil, err
	}
	bundle.Model = model
	bundle.Artifacts = append(bundle.Artifacts, domain.ArtifactInfo{
		Name: "model", URI: modelURI, LoadedAt: time.Now(),
	})

	if len(manifest.NumericalFeatures) > 0 {
		scalerURI := ResolveRef(manifestURI, manifest.Artifacts.Scaler)
		scalerRaw, err := l.fetcher.Fetch(ctx, scalerURI)
		if err != nil {
			return nil, fmt.Errorf("fetch scaler: %w", err)
		}
		scaler, err := ParseScaler(scalerRaw)
		if err != nil {
			return nil, err
		}
		if err := coversFeatures(scaler.Features(), manifest.NumericalFeatures, "scaler"); err != nil {
			return nil, err
		}
		bundle.Scaler = scaler
		bundle.Artifacts = append(bundle.Artifacts, domain.ArtifactInfo{
			Name: "scaler", URI: scalerURI, LoadedAt: time.Now(),
		})
	}

	if len(manifest.CategoricalFeatures) > 0 {
		encoderURI := ResolveRef(manifestURI, manifest.Artifacts.Encoder)
		encoderRaw, err := l.fetcher.Fetch(ctx, encoderURI)
		if err != nil {
			return nil, fmt.Errorf("fetch encoder: %w", err)
		}
		encoder, err := ParseEncoder(encoderRaw)
		if err != nil {
			return nil, err
		}
		if err := coversFeatures(encoder.Features(), manifest.CategoricalFeatures, "encoder"); err != nil {
			return nil, err
		}
		bundle.Encoder = encoder
		bundle.Artifacts = append(bundle.Artifacts, domain.ArtifactInfo{
			Name: "encoder", URI: encoderURI, LoadedAt: time.Now(),
		})
	}

	bundle.LoadedAt = time.Now()
	log.WithFields(log.Fields{
		"bundle":  manifest.Name,
		"version": manifest.Version,
		"took":    time.Since(start).Round(time.Millisecond).String(),
	}).Info("model bundle loaded")
	return bundle, nil
}

func validateManifest(m domain.Manifest) error {
	if m.Name == "" {
		return errors.New("bundle name is required")
	}
	if m.Target == "" {
		return errors.New("target column is required")
	}
	if m.ModelType == "" {
		return errors.New("model type is required")
	}
	if len(m.NumericalFeatures)+len(m.CategoricalFeatures) == 0 {
		return errors.New("at least one feature is required")
	}
	if m.Artifacts.Model == "" {
		return errors.New("model artifact reference is required")
	}
	if len(m.NumericalFeatures) > 0 && m.Artifacts.Scaler == "" {
		return errors.New("scaler artifact reference is required for numerical features")
	}
	if len(m.CategoricalFeatures) > 0 && m.Artifacts.Encoder == "" {
		return errors.New("encoder artifact reference is required for categorical features")
	}
	if len(m.DerivedFeatures) > 0 && m.DateColumn == "" {
		return errors.New("date column is required when derived features are declared")
	}
	categorical := make(map[string]bool, len(m.CategoricalFeatures))
	for _, f := range m.CategoricalFeatures {
		categorical[f] = true
	}
	for _, f := range m.DerivedFeatures {
		if !categorical[f.Name] {
			return fmt.Errorf("derived feature %q is not a categorical feature", f.Name)
		}
		switch f.Part {
		case domain.DatePartDay, domain.DatePartMonth, domain.DatePartWeekday:
		default:
			return fmt.Errorf("derived feature %q has unknown date part %q", f.Name, f.Part)
		}
	}
	if m.ShareColumn != "" && len(m.ShareGroupBy) == 0 {
		return errors.New("share column requires share group-by columns")
	}
	return nil
}

func coversFeatures(have, want []string, artifact string) error {
	known := make(map[string]bool, len(have))
	for _, f := range have {
		known[f] = true
	}
	for _, f := range want {
		if !known[f] {
			return fmt.Errorf("%s artifact is missing feature %q", artifact, f)
		}
	}
	return nil
}
