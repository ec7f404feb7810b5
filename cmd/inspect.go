package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/scantist-ossops-m2/seccompdb/archx86_64"
	"github.com/scantist-ossops-m2/seccompdb/filterdb"
	"github.com/scantist-ossops-m2/seccompdb/spec"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Merge a bundle's seccomp rules and print the resulting decision tree",
	Long: `Read config.json from --bundle, merge its linux.seccomp rules into a
FilterDB, and print each syscall's merged decision tree, one predicate chain
per line, wrapped to the terminal width.`,
	Args: cobra.NoArgs,
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

// bundleConfig is the minimal slice of config.json inspect needs; the full
// OCI config carries far more (process, mounts, namespaces) that this
// library has no business parsing.
type bundleConfig struct {
	Linux struct {
		Seccomp *spec.LinuxSeccomp `json:"seccomp"`
	} `json:"linux"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(filepath.Join(globalBundle, "config.json"))
	if err != nil {
		return fmt.Errorf("read config.json: %w", err)
	}

	var cfg bundleConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse config.json: %w", err)
	}
	if cfg.Linux.Seccomp == nil {
		fmt.Println("config.json carries no linux.seccomp section")
		return nil
	}

	rules, unresolved, unsupported := spec.Convert(cfg.Linux.Seccomp, archx86_64.SyscallNumber)
	if len(unresolved) > 0 {
		fmt.Fprintf(os.Stderr, "warning: unresolved syscalls: %v\n", unresolved)
	}
	if len(unsupported) > 0 {
		fmt.Fprintf(os.Stderr, "warning: unsupported (SCMP_CMP_MASKED_EQ) syscalls: %v\n", unsupported)
	}

	db := filterdb.New(spec.DefaultFilterAction(cfg.Linux.Seccomp))
	defer db.Destroy()
	for _, rule := range rules {
		if err := db.Add(rule); err != nil {
			return fmt.Errorf("merge rule for syscall %d: %w", rule.Syscall, err)
		}
	}

	width := terminalWidth()
	db.Walk(func(v *filterdb.SyscallView) {
		printSyscall(v, width)
	})
	return nil
}

func terminalWidth() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

func printSyscall(v *filterdb.SyscallView, width int) {
	name, ok := archx86_64.SyscallName(v.Syscall)
	if !ok {
		name = fmt.Sprintf("#%d", v.Syscall)
	}

	if v.Unconditional {
		action := "default"
		if v.HasAction {
			action = v.Action.String()
		}
		fmt.Printf("%s: %s\n", name, action)
		return
	}

	for _, line := range renderLevel(name, v.Levels(), nil, width) {
		fmt.Println(line)
	}
}

// renderLevel walks a level list in pre-order, rendering one line per path
// from root to leaf as "<syscall>: <predicate> && <predicate> ... -> action".
func renderLevel(name string, level []*filterdb.TreeNode, prefix []string, width int) []string {
	var lines []string
	for _, n := range level {
		cond := fmt.Sprintf("arg%d %s %d", n.Predicate.ArgIndex, n.Predicate.Op, n.Predicate.Datum)
		path := append(append([]string{}, prefix...), cond)
		negated := append(append([]string{}, prefix...), "!("+cond+")")

		if n.HasAction {
			actionPath := path
			if !n.ActionBranch {
				actionPath = negated
			}
			lines = append(lines, wrapLine(fmt.Sprintf("%s: %s -> %s", name, strings.Join(actionPath, " && "), n.Action), width))
		}
		if len(n.True) > 0 {
			lines = append(lines, renderLevel(name, n.True, path, width)...)
		}
		if len(n.False) > 0 {
			lines = append(lines, renderLevel(name, n.False, negated, width)...)
		}
	}
	return lines
}

func wrapLine(line string, width int) string {
	if width <= 0 || len(line) <= width {
		return line
	}
	var b strings.Builder
	for len(line) > width {
		b.WriteString(line[:width])
		b.WriteByte('\n')
		line = line[width:]
	}
	b.WriteString(line)
	return b.String()
}
