package command

import (
	"fmt"
	"os"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-presence/internal/game"
	"github.com/pixil98/go-presence/internal/storage"
)

type StorageConfig struct {
	// Rooms is a directory of JSON room definition assets. Optional; the
	// default room exists regardless.
	Rooms string `json:"rooms,omitempty"`
}

func (c *StorageConfig) Validate() error {
	el := errors.NewErrorList()

	if c.Rooms != "" {
		info, err := os.Stat(c.Rooms)
		if err != nil {
			el.Add(fmt.Errorf("rooms path: %w", err))
		} else if !info.IsDir() {
			el.Add(fmt.Errorf("rooms path %q is not a directory", c.Rooms))
		}
	}

	return el.Err()
}

func (c *StorageConfig) BuildRoomStore() (storage.Storer[*game.RoomSpec], error) {
	if c.Rooms == "" {
		return nil, nil
	}
	return storage.NewFileStore[*game.RoomSpec](c.Rooms)
}
