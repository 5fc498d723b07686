package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sigmair/internal/config"
	"sigmair/internal/logging"
	"sigmair/internal/sigma"
)

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	origOut := os.Stdout
	origErr := os.Stderr
	rOut, wOut, _ := os.Pipe()
	rErr, wErr, _ := os.Pipe()
	os.Stdout = wOut
	os.Stderr = wErr

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, rOut)
		_, _ = io.Copy(&buf, rErr)
		done <- buf.String()
	}()

	fn()

	_ = wOut.Close()
	_ = wErr.Close()
	os.Stdout = origOut
	os.Stderr = origErr
	return <-done
}

// setup points the CLI at a temp database and resets flag globals.
func setup(t *testing.T) {
	t.Helper()
	logger = zap.NewNop()
	logging.Initialize(nil, nil)

	cfg = config.DefaultConfig()
	cfg.Store.DatabasePath = filepath.Join(t.TempDir(), "blocks.db")
	cfg.UI.Theme = "light"
	translator = nil

	translateFile, translateJSON, translateCopy = "", false, false
	frameFile, frameJSON, frameWatch = "", false, false
	blocksCopy = false
	templatesCategory, templatesRaw, grammarRaw = "", false, false
	configForce = false
	for _, v := range checkpointEntries {
		*v = nil
	}
	for _, v := range reasoningSettings {
		*v = ""
	}

	t.Cleanup(func() {
		logging.Initialize(nil, nil)
		cfg = nil
		translator = nil
	})
}

func TestRootCommandTree(t *testing.T) {
	want := []string{"blocks", "checkpoint", "config", "frame", "grammar", "reasoning", "templates", "translate", "tui"}
	var got []string
	for _, c := range rootCmd.Commands() {
		if c.Name() == "help" || c.Name() == "completion" {
			continue
		}
		got = append(got, c.Name())
	}
	assert.ElementsMatch(t, want, got)

	for _, flag := range []string{"verbose", "config", "db"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestRootPreRun_LoadsConfigAndLexicon(t *testing.T) {
	setup(t)
	dir := t.TempDir()

	lexPath := filepath.Join(dir, "lexicon.yaml")
	require.NoError(t, os.WriteFile(lexPath, []byte("output:\n  - code: O4\n    phrases: [dsl]\n"), 0o644))

	c := config.DefaultConfig()
	c.Lexicon.Path = lexPath
	c.Logging.Level = "warn"
	cfgFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, c.Save(cfgFile))

	origConfig, origDB := configPath, dbPath
	configPath, dbPath = cfgFile, filepath.Join(dir, "override.db")
	defer func() { configPath, dbPath = origConfig, origDB }()

	require.NoError(t, rootCmd.PersistentPreRunE(rootCmd, nil))
	assert.Equal(t, filepath.Join(dir, "override.db"), cfg.Store.DatabasePath)
	assert.Equal(t, "[[I2 O4|dsl,routing|_]]", activeTranslator().Translate("Design a routing dsl").Output)
}

func TestRootPreRun_InvalidConfig(t *testing.T) {
	setup(t)
	cfgFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("translate:\n  batch_workers: 0\n"), 0o644))

	orig := configPath
	configPath = cfgFile
	defer func() { configPath = orig }()

	err := rootCmd.PersistentPreRunE(rootCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch_workers")
}

func TestTranslateCmd(t *testing.T) {
	setup(t)

	output := captureOutput(t, func() {
		require.NoError(t, runTranslate(&cobra.Command{}, []string{"Design", "a", "language", "specification"}))
	})
	assert.Equal(t, "[[I2 O4|specification|_]]\n", output)

	// Error blocks are printed, not returned.
	output = captureOutput(t, func() {
		require.NoError(t, runTranslate(&cobra.Command{}, []string{"hello"}))
	})
	assert.True(t, strings.HasPrefix(output, "[[E0|"), output)

	assert.Error(t, runTranslate(&cobra.Command{}, nil))
}

func TestTranslateCmd_JSON(t *testing.T) {
	setup(t)
	translateJSON = true

	output := captureOutput(t, func() {
		require.NoError(t, runTranslate(&cobra.Command{}, []string{"Execute the script"}))
	})

	var res struct {
		Success bool   `json:"success"`
		Output  string `json:"output"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &res))
	assert.True(t, res.Success)
	assert.Equal(t, "[[I1 O1|execute,script|_]]", res.Output)
}

func TestTranslateCmd_File(t *testing.T) {
	setup(t)
	path := filepath.Join(t.TempDir(), "tasks.txt")
	require.NoError(t, os.WriteFile(path, []byte("Execute the script\n\n   \nDesign a language specification\n"), 0o644))
	translateFile = path

	output := captureOutput(t, func() {
		require.NoError(t, runTranslate(&cobra.Command{}, nil))
	})
	assert.Equal(t, "[[I1 O1|execute,script|_]]\n[[I2 O4|specification|_]]\n", output)

	assert.Error(t, runTranslate(&cobra.Command{}, []string{"also text"}))
}

func TestTranslateCmd_Copy(t *testing.T) {
	setup(t)
	translateCopy = true

	var copied string
	old := clipboardWriteAll
	clipboardWriteAll = func(s string) error { copied = s; return nil }
	defer func() { clipboardWriteAll = old }()

	captureOutput(t, func() {
		require.NoError(t, runTranslate(&cobra.Command{}, []string{"Execute the script"}))
	})
	assert.Equal(t, "[[I1 O1|execute,script|_]]", copied)
}

func TestFrameBuildCmd(t *testing.T) {
	setup(t)
	want := sigma.FrameOpen + "\n[[I1 O1|execute,script|_]]\n[[I2 O4|specification|_]]\n" + sigma.FrameClose + "\n"

	output := captureOutput(t, func() {
		require.NoError(t, runFrameBuild(&cobra.Command{}, []string{
			"[[I2 O4|specification|_]]", "[[I1 O1|execute,script|_]]", "[[I2 O4|specification|_]]",
		}))
	})
	assert.Equal(t, want, output)

	// Stdin, blank lines dropped.
	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader("[[I2 O4|specification|_]]\n\n  [[I1 O1|execute,script|_]]  \n"))
	output = captureOutput(t, func() {
		require.NoError(t, runFrameBuild(cmd, nil))
	})
	assert.Equal(t, want, output)
}

func TestFrameBuildCmd_EmptyInput(t *testing.T) {
	setup(t)
	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader(""))
	output := captureOutput(t, func() {
		require.NoError(t, runFrameBuild(cmd, nil))
	})
	// No blocks at all: no delimiters either.
	assert.Equal(t, "\n", output)
}

func TestFrameBuildCmd_BlankLinesOnly(t *testing.T) {
	setup(t)
	cmd := &cobra.Command{}
	cmd.SetIn(strings.NewReader("   \n\n\t\n"))
	output := captureOutput(t, func() {
		require.NoError(t, runFrameBuild(cmd, nil))
	})
	assert.Equal(t, sigma.FrameOpen+"\n"+sigma.FrameClose+"\n", output)
}

func TestFramePreviewCmd_JSON(t *testing.T) {
	setup(t)
	frameJSON = true
	path := filepath.Join(t.TempDir(), "blocks.txt")
	require.NoError(t, os.WriteFile(path, []byte("b\na\nb\n"), 0o644))
	frameFile = path

	output := captureOutput(t, func() {
		require.NoError(t, runFramePreview(&cobra.Command{}, nil))
	})

	var entries []sigma.PreviewEntry
	require.NoError(t, json.Unmarshal([]byte(output), &entries))
	require.Len(t, entries, 3)
	assert.Equal(t, "a", entries[0].Text)
	assert.True(t, entries[0].Moved)
	assert.True(t, entries[2].IsDuplicate)
}

func TestFramePreviewCmd_Table(t *testing.T) {
	setup(t)
	output := captureOutput(t, func() {
		require.NoError(t, runFramePreview(&cobra.Command{}, []string{"b", "a", "b"}))
	})
	assert.Contains(t, output, "duplicate, dropped")
	assert.Contains(t, output, "moved")
	assert.Contains(t, output, "3 blocks, 2 in frame")
}

func TestFrameWatch_RequiresFile(t *testing.T) {
	setup(t)
	frameWatch = true
	assert.Error(t, runFrameBuild(&cobra.Command{}, nil))
}

func TestBlocksCommands(t *testing.T) {
	setup(t)
	cmd := &cobra.Command{}

	captureOutput(t, func() {
		require.NoError(t, runBlocksAdd(cmd, []string{"Design a language specification"}))
		require.NoError(t, runBlocksAdd(cmd, []string{"Execute", "the", "script"}))
		require.NoError(t, runBlocksAdd(cmd, []string{"Design a language specification"}))
	})

	output := captureOutput(t, func() {
		require.NoError(t, runBlocksList(cmd, nil))
	})
	assert.Contains(t, output, "[[I1 O1|execute,script|_]]")
	assert.Contains(t, output, "Execute the script")

	output = captureOutput(t, func() {
		require.NoError(t, runBlocksUp(cmd, []string{"2"}))
	})
	assert.Equal(t, "1. [[I1 O1|execute,script|_]]\n2. [[I2 O4|specification|_]]\n3. [[I2 O4|specification|_]]\n", output)

	output = captureOutput(t, func() {
		require.NoError(t, runBlocksFrame(cmd, nil))
	})
	assert.Equal(t, sigma.FrameOpen+"\n[[I1 O1|execute,script|_]]\n[[I2 O4|specification|_]]\n"+sigma.FrameClose+"\n", output)

	captureOutput(t, func() {
		require.NoError(t, runBlocksRemove(cmd, []string{"3"}))
		require.NoError(t, runBlocksDown(cmd, []string{"1"}))
	})
	output = captureOutput(t, func() {
		require.NoError(t, runBlocksPreview(cmd, nil))
	})
	assert.Contains(t, output, "2 blocks, 2 in frame")

	assert.Error(t, runBlocksRemove(cmd, []string{"zzzz"}))

	output = captureOutput(t, func() {
		require.NoError(t, runBlocksClear(cmd, nil))
	})
	assert.Equal(t, "Cleared 2 blocks\n", output)

	output = captureOutput(t, func() {
		require.NoError(t, runBlocksList(cmd, nil))
	})
	assert.Contains(t, output, "No blocks")
}

func TestBlocksAdd_Blank(t *testing.T) {
	setup(t)
	err := runBlocksAdd(&cobra.Command{}, []string{"   "})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input required")
}

func TestTemplatesCommands(t *testing.T) {
	setup(t)
	cmd := &cobra.Command{}

	output := captureOutput(t, func() {
		require.NoError(t, runTemplatesList(cmd, nil))
	})
	assert.Contains(t, output, "Design & Synthesis")
	assert.Contains(t, output, "design-spec")

	templatesCategory = "Error Handling"
	output = captureOutput(t, func() {
		require.NoError(t, runTemplatesList(cmd, nil))
	})
	assert.Contains(t, output, "error-contradiction")
	assert.NotContains(t, output, "design-spec")

	templatesCategory = "Nope"
	assert.Error(t, runTemplatesList(cmd, nil))

	output = captureOutput(t, func() {
		require.NoError(t, runTemplatesSearch(cmd, []string{"checkpoint"}))
	})
	assert.Contains(t, output, "state-checkpoint")

	output = captureOutput(t, func() {
		require.NoError(t, runTemplatesSearch(cmd, []string{"zzzzzz"}))
	})
	assert.Contains(t, output, "No templates match")

	templatesRaw = true
	output = captureOutput(t, func() {
		require.NoError(t, runTemplatesShow(cmd, []string{"design-spec"}))
	})
	assert.Contains(t, output, "Design Specification")

	assert.Error(t, runTemplatesShow(cmd, []string{"missing"}))
}

func TestTemplatesShow_Rendered(t *testing.T) {
	setup(t)
	output := captureOutput(t, func() {
		require.NoError(t, runTemplatesShow(&cobra.Command{}, []string{"design-spec"}))
	})
	assert.Contains(t, ansi.Strip(output), "Design Specification")
}

func TestGrammarCmd(t *testing.T) {
	setup(t)
	grammarRaw = true
	output := captureOutput(t, func() {
		require.NoError(t, runGrammar(&cobra.Command{}, nil))
	})
	assert.Equal(t, sigma.GrammarMarkdown(sigma.DefaultLexicon()), output)
}

func TestCheckpointCmd(t *testing.T) {
	setup(t)
	*checkpointEntries[sigma.CheckpointDecided] = []string{"microservices architecture"}
	*checkpointEntries[sigma.CheckpointLocked] = []string{"kubernetes"}

	output := captureOutput(t, func() {
		require.NoError(t, runCheckpoint(&cobra.Command{}, nil))
	})
	assert.Equal(t, "[[SΣ|decided:microservices-architecture,locked:kubernetes|!checkpoint]]\n", output)
}

func TestCheckpointCmd_Empty(t *testing.T) {
	setup(t)
	assert.Error(t, runCheckpoint(&cobra.Command{}, nil))
	assert.Error(t, runReasoning(&cobra.Command{}, nil))
}

func TestReasoningCmd(t *testing.T) {
	setup(t)
	*reasoningSettings[sigma.ReasoningMode] = "latent"
	*reasoningSettings[sigma.ReasoningMemory] = "checkpoint-only"

	output := captureOutput(t, func() {
		require.NoError(t, runReasoning(&cobra.Command{}, nil))
	})
	assert.Equal(t, "[[IΣ|memory:checkpoint-only,mode:latent|!enforced]]\n", output)
}

func TestConfigCommands(t *testing.T) {
	setup(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	orig := configPath
	configPath = path
	defer func() { configPath = orig }()

	output := captureOutput(t, func() {
		require.NoError(t, runConfigInit(&cobra.Command{}, nil))
	})
	assert.Contains(t, output, "Wrote")

	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Translate, loaded.Translate)

	output = captureOutput(t, func() {
		require.NoError(t, runConfigInit(&cobra.Command{}, nil))
	})
	assert.Contains(t, output, "already exists")

	output = captureOutput(t, func() {
		require.NoError(t, runConfigShow(&cobra.Command{}, nil))
	})
	assert.Contains(t, output, "batch_workers: 8")
	assert.Contains(t, output, "theme: light")
}
