package main

import (
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ezrec/rvm/binfile"
	"github.com/ezrec/rvm/config"
	"github.com/ezrec/rvm/emulator"
	"github.com/ezrec/rvm/translate"
)

var f = translate.From

// ErrEntryLabel is returned when the entry label is not in the source.
type ErrEntryLabel string

func (err ErrEntryLabel) Error() string {
	return f("entry label %v not defined", string(err))
}

// session is the state shared by the subcommands of one invocation.
type session struct {
	Config  *config.Config
	Verbose bool
}

func newRootCmd() (root *cobra.Command) {
	ss := &session{}

	root = &cobra.Command{
		Use:           "rvm",
		Short:         "A register virtual machine.",
		Long:          "Assemble, disassemble, and run programs for the rvm register virtual machine.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
			return ss.configure(cmd)
		},
	}

	root.PersistentFlags().String("config", "", "TOML configuration file")
	root.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")

	root.AddCommand(
		newRunCmd(ss),
		newAsmCmd(ss),
		newDisasmCmd(ss),
		newReplCmd(ss),
		newCalcCmd(ss),
		newDefinesCmd(ss),
	)

	return
}

// configure loads the configuration, and sets the log level.
func (ss *session) configure(cmd *cobra.Command) (err error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return
	}

	if len(path) == 0 {
		ss.Config = config.Default()
	} else {
		ss.Config, err = config.Load(path)
		if err != nil {
			return
		}
	}

	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return
	}

	ss.Verbose = verbose || ss.Config.Log.Verbose
	if ss.Verbose {
		log.SetLevel(log.DebugLevel)
	}

	return
}

// heapSize returns the --heap flag if set, otherwise the configured size.
func (ss *session) heapSize(cmd *cobra.Command) (size int) {
	size = ss.Config.Machine.Heap
	if cmd.Flags().Changed("heap") {
		size, _ = cmd.Flags().GetInt("heap")
	}
	return
}

// load reads an image or assembles a source file into a new emulator.
// Files that start with the image magic are images; all others are source.
func (ss *session) load(name string, heapSize int, entry string) (emu *emulator.Emulator, err error) {
	emu = emulator.NewEmulator(heapSize)
	emu.Verbose = ss.Verbose

	data, err := os.ReadFile(name)
	if err != nil {
		return
	}

	if binfile.IsImage(data) {
		var img *binfile.Image
		img, err = binfile.ReadFile(os.DirFS(filepath.Dir(name)), filepath.Base(name))
		if err != nil {
			return
		}
		err = emu.LoadImage(img)
		return
	}

	inf, err := os.Open(name)
	if err != nil {
		return
	}
	defer inf.Close()

	asm, err := emu.Assemble(inf)
	if err != nil {
		err = &ErrFile{Name: name, Err: err}
		return
	}

	if len(entry) != 0 {
		pc, ok := asm.Label[entry]
		if !ok {
			err = &ErrFile{Name: name, Err: ErrEntryLabel(entry)}
			return
		}
		emu.Entry = pc
		emu.Reset()
	}

	return
}

// ErrFile locates an error in a named file.
type ErrFile struct {
	Name string
	Err  error
}

func (err *ErrFile) Error() string {
	return f("%v: %v", err.Name, err.Err)
}

func (err *ErrFile) Unwrap() error {
	return err.Err
}
