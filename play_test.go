package doom_test

import (
	"context"
	"math/rand"
	"reflect"
	"testing"

	doom "github.com/aleskucera/DOOM"
	"github.com/aleskucera/DOOM/doomtest"
)

func TestPlayEpisodes(t *testing.T) {
	game := &doomtest.Game{EpisodeLength: 5}
	env, err := doom.NewEnv(game, doomtest.Config(3))
	if err != nil {
		t.Fatal(err)
	}
	seed := int64(7)
	totals, err := doom.PlayEpisodes(context.Background(), env, fixedAgent(2), 3,
		&seed, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(totals, []float64{15, 15, 15}) {
		t.Errorf("unexpected totals: %v", totals)
	}
	if !reflect.DeepEqual(game.Seeds, []int64{7, 7, 7}) {
		t.Errorf("unexpected seeds: %v", game.Seeds)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := doom.PlayEpisodes(ctx, env, fixedAgent(0), 1, nil, 0); err == nil {
		t.Error("expected cancellation error")
	}
}

func TestPlayEpisodesRespawn(t *testing.T) {
	game := &doomtest.Game{EpisodeLength: 6, DeathTic: 2}
	env, err := doom.NewEnv(game, doomtest.Config(2))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := doom.PlayEpisodes(context.Background(), env, fixedAgent(0), 2,
		nil, 0); err != nil {
		t.Fatal(err)
	}
	if game.Respawns != 2 {
		t.Errorf("expected 2 respawns but got %d", game.Respawns)
	}
	if game.IsPlayerDead() {
		t.Error("player should be alive")
	}
}

func TestRandomAgent(t *testing.T) {
	agent := &doom.RandomAgent{
		Space: doom.Discrete{N: 7},
		Rand:  rand.New(rand.NewSource(1337)),
	}
	seen := map[int]bool{}
	for i := 0; i < 1000; i++ {
		seen[agent.Act(nil)] = true
	}
	if len(seen) != 7 {
		t.Errorf("expected all 7 actions but saw %d", len(seen))
	}
}

type fixedAgent int

func (f fixedAgent) Act(obs doom.Observation) int {
	return int(f)
}
