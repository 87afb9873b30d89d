package exercise

import (
	"os"
	"sync"

	hub "github.com/openziti/bufhub"
	"github.com/openziti/bufhub/cmd/bufhub/bufhub"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func init() {
	exerciseCmd.Flags().IntVarP(&workers, "workers", "w", 8, "Concurrent workers")
	exerciseCmd.Flags().IntVarP(&iterations, "iterations", "n", 1024, "Allocations per worker")
	exerciseCmd.Flags().IntVarP(&imports, "imports", "i", 4, "Imports per allocation")
	bufhub.RootCmd.AddCommand(exerciseCmd)
}

var exerciseCmd = &cobra.Command{
	Use:   "exercise",
	Short: "Drive a broker with concurrent allocate/mint/import/close load",
	Args:  cobra.NoArgs,
	Run:   exercise,
}
var workers int
var iterations int
var imports int

func exercise(_ *cobra.Command, _ []string) {
	options, err := bufhub.HubOptions()
	if err != nil {
		logrus.Fatalf("error loading options (%v)", err)
	}

	h := hub.NewHub(hub.NewMemoryAllocator(0), options)

	desc := hub.BufferDescriptor{Width: 64, Height: 64, Layers: 1, Format: 1, Usage: 0x300}

	wg := new(sync.WaitGroup)
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()
			for n := 0; n < iterations; n++ {
				client, _, status := h.Allocate(desc, 64)
				if status != hub.NO_ERROR {
					logrus.Errorf("worker [%d] allocate failed [%s]", w, status)
					continue
				}

				clients := []*hub.Client{client}
				for i := 0; i < imports; i++ {
					th := h.RegisterToken(client)
					imported, _, status := h.Import(th)
					if status != hub.NO_ERROR {
						logrus.Errorf("worker [%d] import failed [%s]", w, status)
						continue
					}
					clients = append(clients, imported)
				}

				for _, c := range clients {
					c.Close()
				}
			}
		}(w)
	}
	wg.Wait()

	logrus.Infof("complete: [%d] workers, [%d] iterations, [%d] imports each", workers, iterations, imports)
	h.Dump(os.Stdout, nil)
}
