package main

import (
	"github.com/sirupsen/logrus"

	"ticketbari/cmd"
)

func main() {
	if err := cmd.Start(); err != nil {
		logrus.WithError(err).Fatal("ticketbari stopped")
	}
}
