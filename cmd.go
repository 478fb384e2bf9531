// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package indexedlist

import (
	"io"

	"github.com/featurebasedb/indexedlist/logger"
)

// CmdIO holds standard unix inputs and outputs.
type CmdIO struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	logger logger.Logger
}

// NewCmdIO returns a new instance of CmdIO with inputs and outputs set to the
// arguments.
func NewCmdIO(stdin io.Reader, stdout, stderr io.Writer) *CmdIO {
	return &CmdIO{
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
		logger: logger.NewStandardLogger(stderr),
	}
}

// Logger returns the command logger, writing to Stderr unless replaced.
func (c *CmdIO) Logger() logger.Logger {
	return c.logger
}

// SetLogger replaces the command logger.
func (c *CmdIO) SetLogger(l logger.Logger) {
	c.logger = l
}
