package usecase

import (
	"context"

	"merch-forecast/internal/domain"
)

type ModelInfoUseCase struct {
	bundle *domain.Bundle
}

func NewModelInfoUseCase(bundle *domain.Bundle) *ModelInfoUseCase {
	return &ModelInfoUseCase{bundle: bundle}
}

func (uc *ModelInfoUseCase) Info(ctx context.Context) (*domain.BundleInfo, error) {
	if uc.bundle == nil || uc.bundle.Model == nil {
		return nil, domain.ErrBundleNotLoaded
	}
	m := uc.bundle.Manifest
	return &domain.BundleInfo{
		Name:                m.Name,
		Version:             m.Version,
		ModelType:           m.ModelType,
		Target:              m.Target,
		NumericalFeatures:   append([]string(nil), m.NumericalFeatures...),
		CategoricalFeatures: append([]string(nil), m.CategoricalFeatures...),
		RequiredColumns:     m.RequiredColumns(),
		Artifacts:           append([]domain.ArtifactInfo(nil), uc.bundle.Artifacts...),
		LoadedAt:            uc.bundle.LoadedAt,
	}, nil
}
