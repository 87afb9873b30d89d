package influx

import (
	"github.com/openziti/bufhub/cmd/bufhub/bufhub"
	"github.com/spf13/cobra"
)

func init() {
	influxCmd.PersistentFlags().StringVarP(&influxDbUrl, "url", "", "http://localhost:8086", "InfluxDB URL")
	influxCmd.PersistentFlags().StringVarP(&influxDbUsername, "username", "", "", "InfluxDB Username")
	influxCmd.PersistentFlags().StringVarP(&influxDbPassword, "password", "", "", "InfluxDB Password")
	influxCmd.PersistentFlags().StringVarP(&influxDbDatabase, "database", "", "bufhub", "InfluxDB Database")
	bufhub.RootCmd.AddCommand(influxCmd)
}

var influxCmd = &cobra.Command{
	Use:   "influx",
	Short: "Manage broker metrics data in InfluxDB",
}
var influxDbUrl string
var influxDbUsername string
var influxDbPassword string
var influxDbDatabase string

var datasets = []string{
	"allocations",
	"allocate_failures",
	"imports",
	"invalid_tokens",
	"buffers_freed",
	"max_clients",
	"tokens_minted",
	"clients_closed",
}
