package event

import "github.com/trijam/forcerun/internal/core/ecs"

// LevelGenerated is emitted once a blueprint has been generated and spawned.
type LevelGenerated struct {
	Level     int
	Obstacles int
}

// LevelActivated is emitted when a cached blueprint is re-spawned.
type LevelActivated struct {
	Level     int
	Obstacles int
}

// LevelCompleted is emitted when the player reaches the finish line.
type LevelCompleted struct {
	Level int
}

// PlayerDied is emitted once when the player's health is exhausted.
type PlayerDied struct {
	Level int
}

// PlayClicked is emitted by the shell when a run should start.
type PlayClicked struct{}

// ObstacleCleared is emitted when the player breaks or collects an obstacle.
type ObstacleCleared struct {
	Handle           ecs.Handle
	DestructionValue float64
}

// PlayerPushedBack is emitted when an obstacle is stronger than the player.
type PlayerPushedBack struct {
	Handle   ecs.Handle
	Required float64
	Force    float64
}

// PreferenceChanged carries the key that changed, or "ALL" after a reset.
type PreferenceChanged struct {
	Key string
}
