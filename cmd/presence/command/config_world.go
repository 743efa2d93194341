package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-presence/internal/game"
	"github.com/pixil98/go-presence/internal/storage"
)

type WorldConfig struct {
	// DefaultRoom overrides the built-in parameters of the default room.
	DefaultRoom *game.RoomSpec `json:"default_room,omitempty"`

	// EmptyRoomGrace is how long a dynamically created room may sit empty
	// before it is pruned.
	EmptyRoomGrace string `json:"empty_room_grace,omitempty"`
}

func (c *WorldConfig) Validate() error {
	el := errors.NewErrorList()

	if c.DefaultRoom != nil {
		el.Add(c.DefaultRoom.Validate())
	}

	if c.EmptyRoomGrace != "" {
		d, err := time.ParseDuration(c.EmptyRoomGrace)
		if err != nil {
			el.Add(fmt.Errorf("parsing empty_room_grace: %w", err))
		} else if d <= 0 {
			el.Add(fmt.Errorf("empty_room_grace must be positive"))
		}
	}

	return el.Err()
}

func (c *WorldConfig) BuildWorld(rooms storage.Storer[*game.RoomSpec]) (*game.World, error) {
	var opts []game.WorldOpt

	if c.DefaultRoom != nil {
		opts = append(opts, game.WithRoom(game.DefaultRoomId, c.DefaultRoom))
	}

	if c.EmptyRoomGrace != "" {
		d, err := time.ParseDuration(c.EmptyRoomGrace)
		if err != nil {
			return nil, fmt.Errorf("parsing empty_room_grace: %w", err)
		}
		opts = append(opts, game.WithEmptyRoomGrace(d))
	}

	if rooms != nil {
		for id, spec := range rooms.GetAll() {
			if id == game.DefaultRoomId && c.DefaultRoom != nil {
				return nil, fmt.Errorf("default room defined both inline and as an asset")
			}
			opts = append(opts, game.WithRoom(id, spec))
		}
	}

	return game.NewWorld(opts...), nil
}
