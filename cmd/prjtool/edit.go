package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/prj"
)

var errNoEditor = errors.New("editor not found")

// editorCommand picks the editor: flag, config, $VISUAL, $EDITOR, then vi.
func (a *app) editorCommand(flagValue string) []string {
	for _, c := range []string{flagValue, a.cfg.Editor, os.Getenv("VISUAL"), os.Getenv("EDITOR")} {
		if fields := strings.Fields(c); len(fields) > 0 {
			return fields
		}
	}

	return []string{"vi"}
}

func (a *app) edit(args []string) error {
	fs := a.newFlagSet("edit", "<file.PRJ>")
	editor := fs.String("editor", "", "editor command (default from config, $VISUAL or $EDITOR)")
	noBackup := fs.Bool("no-backup", false, "do not back up the original file")
	if err := parseArgs(fs, args, 1); err != nil {
		return err
	}
	path := fs.Arg(0)

	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	orig, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	p, err := prj.Decode(bytes.NewReader(orig))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	text, err := a.marshalProject(p)
	if err != nil {
		return err
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	tmp, err := os.CreateTemp("", stem+"-*.json")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(append(text, '\n')); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	argv := a.editorCommand(*editor)
	if _, err := exec.LookPath(argv[0]); err != nil {
		return fmt.Errorf("%w: %s", errNoEditor, argv[0])
	}
	cmd := exec.Command(argv[0], append(argv[1:], tmp.Name())...) //nolint:gosec // editor is user-chosen
	cmd.Stdin, cmd.Stdout, cmd.Stderr = a.stdin, a.stdout, a.stderr
	log.Debug().Strs("editor", argv).Str("json", tmp.Name()).Msg("starting editor")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("editor %s: %w", argv[0], err)
	}

	edited, err := os.ReadFile(tmp.Name())
	if err != nil {
		return err
	}
	var q prj.Project
	if err := json.Unmarshal(edited, &q); err != nil {
		return fmt.Errorf("parse edited project: %w", err)
	}

	var buf bytes.Buffer
	if err := prj.Encode(&buf, &q); err != nil {
		return fmt.Errorf("encode edited project: %w", err)
	}
	if bytes.Equal(buf.Bytes(), orig) {
		log.Info().Str("project", path).Msg("no changes")
		return nil
	}

	if a.cfg.Backup.Enabled && !*noBackup {
		backup, err := writeBackup(a.cfg.Backup.Dir, path, orig, a.cfg.Backup.Codec)
		if err != nil {
			return fmt.Errorf("backup: %w", err)
		}
		log.Info().Str("backup", backup).Msg("original saved")
	}

	if err := os.WriteFile(path, buf.Bytes(), info.Mode().Perm()); err != nil {
		return err
	}

	log.Info().Str("project", path).Int("bytes", buf.Len()).Msg("saved")
	return nil
}
