// Village runs the decoration sandbox in a desktop window. Drag items to
// move them, drag the background to scroll, tap a doll to change its
// animation and tap water to add a fish. Press S for selection mode.
//
// Environment (also read from a .env file):
//
//	VILLAGE_SAVE    save file, default village-save.json
//	VILLAGE_TUNING  optional YAML tuning file
//	VILLAGE_SCRIPT  optional JSON interaction script
//	LOG_LEVEL       logrus level, default info
package main

import (
	"log"
	"math/rand/v2"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/yohamta/donburi"

	"github.com/phanxgames/village"
	"github.com/phanxgames/village/ecs"
	"github.com/phanxgames/village/stage"
)

const (
	windowTitle = "Village"
	showFPS     = true
	screenW     = 1280
	screenH     = 720
)

func main() {
	_ = godotenv.Load()
	village.ConfigureLogging()

	tuning := village.DefaultTuning()
	if path := os.Getenv("VILLAGE_TUNING"); path != "" {
		t, err := village.LoadTuning(path)
		if err != nil {
			log.Fatal(err)
		}
		tuning = t
	}
	savePath := os.Getenv("VILLAGE_SAVE")
	if savePath == "" {
		savePath = "village-save.json"
	}

	w := village.NewWorld(village.WorldConfig{
		Tuning: &tuning,
		Width:  screenW,
		Height: screenH,
		Rand:   rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)),
	})
	if snap, err := village.LoadFile(savePath); err == nil {
		w.Load(snap)
	} else {
		village.Log.WithError(err).Info("starting a new village")
		w.Reset()
	}

	// Mirror the village into an ECS world and log its events from there.
	ecsWorld := donburi.NewWorld()
	mirror := ecs.NewMirror(ecsWorld)
	ecs.VillageEventType.Subscribe(ecsWorld, func(_ donburi.World, e village.Event) {
		village.Log.WithFields(logrus.Fields{"event": e.Type, "item": e.ItemID}).Debug("village event")
	})
	w.SetEventSink(ecs.NewDonburiStore(ecsWorld))

	if path := os.Getenv("VILLAGE_SCRIPT"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatal(err)
		}
		runner, err := village.LoadScript(data)
		if err != nil {
			log.Fatal(err)
		}
		w.SetScript(runner)
	}

	var lastSave time.Time
	save := func() {
		if err := village.SaveFile(savePath, w.Snapshot(), village.SaveWithSimState); err != nil {
			village.Log.WithError(err).Warn("save failed")
		}
	}

	err := stage.Run(w, stage.RunConfig{
		Title:   windowTitle,
		Width:   screenW,
		Height:  screenH,
		ShowFPS: showFPS,
		OnUpdate: func(w *village.World, now time.Time) {
			mirror.Sync(w.Items())
			ecs.VillageEventType.ProcessEvents(ecsWorld)
			if now.Sub(lastSave) >= w.Tuning.AutosaveInterval {
				lastSave = now
				save()
			}
		},
	})
	save()
	if err != nil {
		log.Fatal(err)
	}
}
