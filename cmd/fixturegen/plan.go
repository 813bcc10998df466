package main

import (
	"fmt"
	"io"

	"github.com/Dosada05/fixture-engine/models"
	"github.com/Dosada05/fixture-engine/repositories"
	"gopkg.in/yaml.v3"
)

// planFile is the YAML description of a tournament accepted by fixturegen.
type planFile struct {
	Tournament struct {
		ID   int64  `yaml:"id"`
		Name string `yaml:"name"`
	} `yaml:"tournament"`
	Seed   uint64      `yaml:"seed"`
	Stages []planStage `yaml:"stages"`
}

type planStage struct {
	ID           int64             `yaml:"id"`
	Ordinal      int               `yaml:"ordinal"`
	Kind         string            `yaml:"kind"`
	Name         string            `yaml:"name"`
	Config       map[string]any    `yaml:"config"`
	Groups       []string          `yaml:"groups"`
	Participants []planParticipant `yaml:"participants"`
}

type planParticipant struct {
	Team  int64 `yaml:"team"`
	Seed  *int  `yaml:"seed"`
	Group *int  `yaml:"group"`
}

func decodePlan(r io.Reader) (*planFile, error) {
	var p planFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to decode plan: %w", err)
	}
	if p.Tournament.ID == 0 {
		p.Tournament.ID = 1
	}
	if len(p.Stages) == 0 {
		return nil, fmt.Errorf("plan has no stages")
	}
	seen := make(map[int64]bool, len(p.Stages))
	for i, st := range p.Stages {
		if st.ID == 0 {
			return nil, fmt.Errorf("stage #%d: id is required", i+1)
		}
		if seen[st.ID] {
			return nil, fmt.Errorf("stage %d is declared twice", st.ID)
		}
		seen[st.ID] = true
		if !models.StageKind(st.Kind).Valid() {
			return nil, fmt.Errorf("stage %d: unknown kind %q", st.ID, st.Kind)
		}
		if st.Ordinal == 0 {
			p.Stages[i].Ordinal = i + 1
		}
		for _, part := range st.Participants {
			if part.Group != nil && (*part.Group < 0 || *part.Group >= len(st.Groups)) {
				return nil, fmt.Errorf("stage %d: team %d is in unknown group %d", st.ID, part.Team, *part.Group)
			}
		}
	}
	return &p, nil
}

// groupID derives a stable id for the i-th group of a stage.
func groupID(stageID int64, index int) int64 {
	return stageID*1000 + int64(index) + 1
}

// load seeds the store with the plan.
func (p *planFile) load(store *repositories.MemoryStore) error {
	store.AddTournament(models.Tournament{ID: p.Tournament.ID, Name: p.Tournament.Name})
	for _, st := range p.Stages {
		cfg, err := models.ParseStageConfig(st.ID, st.Config)
		if err != nil {
			return fmt.Errorf("stage %d: %w", st.ID, err)
		}
		store.AddStage(models.Stage{
			ID:           st.ID,
			TournamentID: p.Tournament.ID,
			Ordinal:      st.Ordinal,
			Kind:         models.StageKind(st.Kind),
			Name:         st.Name,
			Config:       cfg,
		})
		for i, name := range st.Groups {
			if name == "" {
				name = models.GroupLabel(i)
			}
			store.AddGroup(models.Group{ID: groupID(st.ID, i), StageID: st.ID, Index: i, Name: name})
		}
		for _, part := range st.Participants {
			store.AddParticipant(models.Participant{
				StageID:    st.ID,
				GroupIndex: part.Group,
				TeamID:     part.Team,
				Seed:       part.Seed,
			})
		}
	}
	return nil
}
