package serve

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	hub "github.com/openziti/bufhub"
	"github.com/openziti/bufhub/cmd/bufhub/bufhub"
	"github.com/openziti/bufhub/shmem"
	"github.com/openziti/bufhub/util"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func init() {
	serveCmd.Flags().StringVarP(&allocatorRoot, "root", "r", "/tmp/bufhub", "Segment allocator root directory")
	serveCmd.Flags().StringVarP(&ctrlRoot, "ctrl", "c", "/tmp/bufhub", "Ctrl socket root directory")
	bufhub.RootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a buffer broker",
	Args:  cobra.NoArgs,
	Run:   serve,
}
var allocatorRoot string
var ctrlRoot string

func serve(_ *cobra.Command, _ []string) {
	options, err := bufhub.HubOptions()
	if err != nil {
		logrus.Fatalf("error loading options (%v)", err)
	}

	allocator, err := shmem.NewAllocator(allocatorRoot)
	if err != nil {
		logrus.Fatalf("error creating allocator (%v)", err)
	}

	h := hub.NewHub(allocator, options)

	cl, err := util.GetCtrlListener(ctrlRoot, "bufhub")
	if err != nil {
		logrus.Fatalf("error creating ctrl listener (%v)", err)
	}
	cl.AddCallback("dump", func(line string) error {
		tokens := strings.Split(line, " ")
		out := os.Stdout
		if len(tokens) > 1 {
			f, err := os.OpenFile(tokens[1], os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.ModePerm)
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()
			out = f
		}
		h.Dump(out, nil)
		return nil
	})
	cl.Start()

	logrus.Infof("broker started, allocator root [%s]", allocatorRoot)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	logrus.Infof("broker exiting")
}
