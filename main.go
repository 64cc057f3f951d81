package main

import "github.com/BerniceZTT/kpi_funnel/cmd"

func main() {
	cmd.Execute()
}
