package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"transfer/internal/file"
	"transfer/internal/inventory"
	"transfer/internal/transfer"
	"transfer/internal/ui"
	"transfer/pkg/utils"
)

const (
	verbCopy = "copy"
	verbMove = "move"
)

// newTransferCmd creates the copy or move command. Both copy; move does
// not delete the source.
func newTransferCmd(a *app, verb string) *cobra.Command {
	short := "Copy a directory tree, resuming a previous run"
	if verb == verbMove {
		short = "Same as copy; source files are not deleted"
	}

	return &cobra.Command{
		Use:   verb + " <source_path> <destination_path>",
		Short: short,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return ErrUsage
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTransfer(verb, args[0], args[1])
		},
	}
}

// runTransfer builds the inventory of src and copies it under dst
func (a *app) runTransfer(verb, src, dst string) error {
	rep := ui.New(a.cfg.Display, a.stdout)
	log := a.logger.WithFields(logrus.Fields{"verb": verb, "src": src, "dst": dst})

	root, err := utils.ResolveSourcePath(src)
	if err != nil {
		if errors.Is(err, utils.ErrSourceMissing) {
			rep.Error(fmt.Sprintf("Source path '%s' does not exist.", src))
		} else {
			rep.Error(err.Error())
		}
		return errReported
	}

	if verb == verbMove {
		log.Warn("move is not implemented, source files will be kept")
	}

	files := file.NewOsFileService()
	inv, err := inventory.NewBuilder(files, a.logger, rep.Warn).Build(root)
	if err != nil {
		rep.Error(err.Error())
		return errReported
	}
	log.WithFields(logrus.Fields{"files": inv.Len(), "bytes": inv.TotalBytes}).Info("inventory ready")

	ctx, cancel := createContext(a.logger)
	defer cancel()

	engine := transfer.NewEngine(files, rep, a.logger, transfer.Options{
		ChunkSize: a.cfg.Transfer.ChunkSize,
	})
	res, err := engine.Run(ctx, inv, dst)
	if err != nil {
		rep.Close()
		if errors.Is(err, context.Canceled) {
			rep.Error("transfer interrupted, the last file may be incomplete")
		} else {
			rep.Error(err.Error())
		}
		return errReported
	}

	if a.cfg.Transfer.Strict && res.HasFailures() {
		rep.Error(fmt.Sprintf("%d of %d file(s) failed", res.Failed, res.Files))
		return errReported
	}
	return nil
}
