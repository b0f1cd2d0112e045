package main

import (
	"github.com/dreitier/treefactor/cmd"
	log "github.com/sirupsen/logrus"
)

func main() {
	configureLogrus()
	cmd.Execute()
}

func configureLogrus() {
	customFormatter := new(log.TextFormatter)
	customFormatter.TimestampFormat = "2006-01-02 15:04:05"
	customFormatter.FullTimestamp = true
	log.SetFormatter(customFormatter)
}
