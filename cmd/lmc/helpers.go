package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/DonovanMods/linux-mc-launcher/internal/core"
	"github.com/DonovanMods/linux-mc-launcher/internal/domain"
	"github.com/DonovanMods/linux-mc-launcher/internal/task"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// runtimeFlags binds the component flags shared by commands that take a
// runtime composition.
type runtimeFlags struct {
	minecraft  string
	forge      string
	fabric     string
	liteloader string
	optifine   string
}

func (f *runtimeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.minecraft, "minecraft", "", "Minecraft version (e.g. 1.20.1)")
	cmd.Flags().StringVar(&f.forge, "forge", "", "Forge version (e.g. 47.1.0)")
	cmd.Flags().StringVar(&f.fabric, "fabric", "", "Fabric loader version")
	cmd.Flags().StringVar(&f.liteloader, "liteloader", "", "LiteLoader version")
	cmd.Flags().StringVar(&f.optifine, "optifine", "", "OptiFine version (recorded only)")
}

func (f *runtimeFlags) runtime() domain.RuntimeVersions {
	return domain.RuntimeVersions{
		Minecraft:    f.minecraft,
		Forge:        f.forge,
		FabricLoader: f.fabric,
		Liteloader:   f.liteloader,
		Optifine:     f.optifine,
	}
}

func (f *runtimeFlags) reset() {
	*f = runtimeFlags{}
}

// requireInstance returns the selected instance or a hint on how to pick one.
func requireInstance(service *core.Service) (domain.Instance, error) {
	inst, err := service.Instances().Selected()
	if err != nil {
		return domain.Instance{}, fmt.Errorf("%w; use --instance or 'lmc instance select <path>'", domain.ErrNoInstanceSelected)
	}
	return inst, nil
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// truncate shortens s to max runes with an ellipsis.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

// formatProgress renders a task's progress for a status line.
func formatProgress(p task.Progress) string {
	if p.Total <= 0 {
		return ""
	}
	pct := p.Fraction() * 100
	if p.Unit == "bytes" {
		return fmt.Sprintf("%.1f%% (%s/%s)", pct, humanize.Bytes(uint64(p.Current)), humanize.Bytes(uint64(p.Total)))
	}
	if p.Unit != "" {
		return fmt.Sprintf("%.1f%% (%d/%d %s)", pct, p.Current, p.Total, p.Unit)
	}
	return fmt.Sprintf("%.1f%%", pct)
}

// progressPrinter draws one updating line per install task the service
// starts. Output is suppressed with --json.
type progressPrinter struct {
	mu     sync.Mutex
	unsubs []func()
}

func watchProgress(service *core.Service) *progressPrinter {
	p := &progressPrinter{}
	if jsonOutput {
		return p
	}
	service.ObserveTasks(func(o task.Observer) {
		name := o.Name()
		unsub := o.Subscribe(func(e task.Event) {
			p.mu.Lock()
			defer p.mu.Unlock()
			switch {
			case e.Path == name && e.State == task.Succeeded:
				fmt.Printf("\r  %s %s\033[K\n", colorGreen("✓"), name)
			case e.Path == name && e.State.Done():
				fmt.Printf("\r  %s %s: %s\033[K\n", colorRed("✗"), name, e.State)
			default:
				// child events carry their own progress; show the aggregate
				fmt.Printf("\r  ⬇ %s: %s\033[K", name, formatProgress(o.Progress()))
			}
		})
		p.mu.Lock()
		p.unsubs = append(p.unsubs, unsub)
		p.mu.Unlock()
	})
	return p
}

func (p *progressPrinter) stop(service *core.Service) {
	service.ObserveTasks(nil)
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, u := range p.unsubs {
		u()
	}
	p.unsubs = nil
}
