// Package config manages the maze catalog.
//
// Mazes are JSON files in one directory. The file name without ".json" is
// the config id used by sessions and the API:
//
//	{
//	  "name": "Classic",
//	  "description": "The reference 9x9 maze",
//	  "difficulty": "medium",
//	  "layout": [".....#...", ".....#...", "........."]
//	}
//
// Layout rows are used verbatim: '#' is a wall and any other byte is open.
// Every file is validated when it is first loaded and then cached.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//	maze, err := manager.LoadConfig("classic")
//	infos, err := manager.ListConfigs()
//
// GetDefault returns "classic" when present, otherwise the first valid file,
// otherwise the built-in engine.DefaultMazeConfig.
package config
