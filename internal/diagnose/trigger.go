package diagnose

import (
	"context"

	"github.com/DonovanMods/linux-mc-launcher/internal/ctxlog"
	"github.com/DonovanMods/linux-mc-launcher/internal/event"
)

// Triggers maps each mutation event to the checks whose inputs it affects.
var Triggers = map[string][]Category{
	"InstanceSelected":      Categories(),
	"RuntimeEdited":         {CategoryVersion, CategoryJava, CategoryMods, CategoryResourcePacks},
	"JavaChanged":           {CategoryJava},
	"LocalVersionsChanged":  {CategoryVersion, CategoryJava},
	"ModsChanged":           {CategoryMods, CategoryServer},
	"ResourcePacksChanged":  {CategoryResourcePacks},
	"AccountChanged":        {CategoryUser},
	"ServerStatusRefreshed": {CategoryServer},
}

// Wire subscribes the engine to bus so each event reruns only the checks in
// Triggers. Passes run on their own goroutine because publishers may hold the
// diagnosis lock; Wait blocks until they finish. The returned func
// unsubscribes.
func (e *Engine) Wire(ctx context.Context, bus *event.Bus) func() {
	on := func(name string) func() {
		cats := Triggers[name]
		return func() { e.trigger(ctx, name, cats) }
	}
	instance, runtime, java := on("InstanceSelected"), on("RuntimeEdited"), on("JavaChanged")
	versions, mods, packs := on("LocalVersionsChanged"), on("ModsChanged"), on("ResourcePacksChanged")
	account, server := on("AccountChanged"), on("ServerStatusRefreshed")

	unsubs := []func(){
		event.Subscribe(bus, func(event.InstanceSelected) { instance() }),
		event.Subscribe(bus, func(event.RuntimeEdited) { runtime() }),
		event.Subscribe(bus, func(event.JavaChanged) { java() }),
		event.Subscribe(bus, func(event.LocalVersionsChanged) { versions() }),
		event.Subscribe(bus, func(event.ModsChanged) { mods() }),
		event.Subscribe(bus, func(event.ResourcePacksChanged) { packs() }),
		event.Subscribe(bus, func(event.AccountChanged) { account() }),
		event.Subscribe(bus, func(event.ServerStatusRefreshed) { server() }),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

func (e *Engine) trigger(ctx context.Context, name string, cats []Category) {
	e.triggers.Add(1)
	go func() {
		defer e.triggers.Done()
		log := ctxlog.FromContext(ctx)
		log.Debug("diagnosis triggered", "event", name, "categories", len(cats))
		if err := e.Diagnose(ctx, cats...); err != nil {
			log.Warn("triggered diagnosis failed", "event", name, "error", err)
		}
	}()
}

// Wait blocks until every triggered pass has finished.
func (e *Engine) Wait() {
	e.triggers.Wait()
}
