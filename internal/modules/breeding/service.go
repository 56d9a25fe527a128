// Package breeding composes the inheritance calculator and the birth trait
// resolver into the foal creation flow.
package breeding

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rosehill/paddock/internal/domain"
	"github.com/rosehill/paddock/internal/modules/genetics"
	"github.com/rosehill/paddock/internal/modules/horses"
)

// Request describes one breeding attempt. When Seed is nil the service
// derives one, so supplying a seed makes the whole birth reproducible.
type Request struct {
	SireID      string
	DamID       string
	Name        string
	Sex         domain.Sex
	StressLevel int
	FeedQuality int
	Seed        *uint64
}

// Outcome is a completed birth
type Outcome struct {
	Foal       domain.Horse
	Bundle     domain.TraitBundle
	Candidates []genetics.Candidate
	Seed       uint64
}

// Service runs the breeding flow: load parent genetics, compute candidates,
// resolve draws, persist the foal and its bundle.
type Service struct {
	horses     *horses.Repository
	calculator *genetics.Calculator
	resolver   *genetics.Resolver
	clock      domain.Clock
	log        zerolog.Logger
}

// NewService creates a new breeding service
func NewService(
	horseRepo *horses.Repository,
	calculator *genetics.Calculator,
	resolver *genetics.Resolver,
	clock domain.Clock,
	log zerolog.Logger,
) *Service {
	return &Service{
		horses:     horseRepo,
		calculator: calculator,
		resolver:   resolver,
		clock:      clock,
		log:        log.With().Str("service", "breeding").Logger(),
	}
}

// Breed produces and persists a foal from the given parents. Unknown parents
// come back as a ValidationError naming the missing id; handlers translate
// that into a 404.
func (s *Service) Breed(req Request) (*Outcome, error) {
	sire, err := s.horses.Get(req.SireID)
	if err != nil {
		return nil, err
	}
	if sire == nil {
		return nil, domain.NewValidationError("sire %s not found", req.SireID)
	}
	dam, err := s.horses.Get(req.DamID)
	if err != nil {
		return nil, err
	}
	if dam == nil {
		return nil, domain.NewValidationError("dam %s not found", req.DamID)
	}

	if sire.Sex != domain.SexStallion {
		return nil, domain.NewValidationError("sire %s is not a stallion", req.SireID)
	}
	if dam.Sex != domain.SexMare {
		return nil, domain.NewValidationError("dam %s is not a mare", req.DamID)
	}

	sireTraits, err := s.horses.TraitSet(req.SireID)
	if err != nil {
		return nil, err
	}
	damTraits, err := s.horses.TraitSet(req.DamID)
	if err != nil {
		return nil, err
	}

	lineage, err := s.loadLineage(sire, dam)
	if err != nil {
		return nil, err
	}

	candidates := s.calculator.ComputeInheritance(sireTraits, damTraits, lineage)

	seed := s.seedFor(req)
	bundle, err := s.resolver.ResolveBirthTraits(candidates, genetics.CareContext{
		StressLevel: req.StressLevel,
		FeedQuality: req.FeedQuality,
	}, genetics.NewBernoulliRoller(seed))
	if err != nil {
		return nil, err
	}

	foal := domain.Horse{
		ID:     uuid.New().String(),
		Name:   req.Name,
		Sex:    req.Sex,
		BornAt: s.clock.Now(),
		SireID: req.SireID,
		DamID:  req.DamID,
	}
	if foal.Name == "" {
		foal.Name = "Unnamed foal"
	}
	if !foal.Sex.IsValid() {
		foal.Sex = domain.SexMare
	}

	if err := s.horses.Create(foal); err != nil {
		return nil, err
	}
	if err := s.horses.SaveBundle(foal.ID, bundle); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("foal_id", foal.ID).
		Str("sire_id", req.SireID).
		Str("dam_id", req.DamID).
		Int("positive", len(bundle.Positive)).
		Int("negative", len(bundle.Negative)).
		Int("hidden", len(bundle.Hidden)).
		Msg("Foal born")

	return &Outcome{Foal: foal, Bundle: bundle, Candidates: candidates, Seed: seed}, nil
}

// loadLineage collects grandparent trait sets. Grandparents outside the
// stable (imported parents) simply contribute nothing.
func (s *Service) loadLineage(sire, dam *domain.Horse) (domain.Lineage, error) {
	var lineage domain.Lineage
	for _, id := range []string{sire.SireID, sire.DamID, dam.SireID, dam.DamID} {
		if id == "" {
			continue
		}
		set, err := s.horses.TraitSet(id)
		if err != nil {
			return nil, err
		}
		if len(set) > 0 {
			lineage = append(lineage, set)
		}
	}
	return lineage, nil
}

func (s *Service) seedFor(req Request) uint64 {
	if req.Seed != nil {
		return *req.Seed
	}
	return uint64(s.clock.Now().UnixNano())
}
