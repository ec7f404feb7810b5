package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scantist-ossops-m2/seccompdb/archx86_64"
	"github.com/scantist-ossops-m2/seccompdb/filterdb"
	"github.com/scantist-ossops-m2/seccompdb/profile"
	"github.com/scantist-ossops-m2/seccompdb/spec"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Print the default allow-list seccomp profile",
	Long: `Generate the built-in default allow-list profile (a broad unconditional
allow-list plus the handful of argument-conditional rules for socket() and
personality()) as an OCI linux.seccomp JSON object, the same shape a bundle's
config.json carries.`,
	Args: cobra.NoArgs,
	RunE: runProfile,
}

func init() {
	rootCmd.AddCommand(profileCmd)
}

var actionNames = map[filterdb.Action]spec.LinuxSeccompAction{
	filterdb.ActionAllow:       spec.ActAllow,
	filterdb.ActionDeny:        spec.ActErrno,
	filterdb.ActionKill:        spec.ActKill,
	filterdb.ActionKillProcess: spec.ActKillProcess,
	filterdb.ActionTrap:        spec.ActTrap,
	filterdb.ActionTrace:       spec.ActTrace,
	filterdb.ActionLog:         spec.ActLog,
}

var rawOpNames = map[filterdb.RawOp]spec.LinuxSeccompOperator{
	filterdb.RawEQ: spec.OpEqualTo,
	filterdb.RawNE: spec.OpNotEqual,
	filterdb.RawLT: spec.OpLessThan,
	filterdb.RawLE: spec.OpLessEqual,
	filterdb.RawGT: spec.OpGreaterThan,
	filterdb.RawGE: spec.OpGreaterEqual,
}

func runProfile(cmd *cobra.Command, args []string) error {
	rules, unresolved := profile.DefaultRules(archx86_64.SyscallNumber)
	if len(unresolved) > 0 {
		fmt.Fprintf(os.Stderr, "warning: %d default-profile syscalls did not resolve: %v\n", len(unresolved), unresolved)
	}

	seccomp := &spec.LinuxSeccomp{
		DefaultAction: spec.ActErrno,
		Architectures: []spec.Arch{spec.ArchX86_64},
		Syscalls:      make([]spec.LinuxSyscall, 0, len(rules)),
	}
	for _, rule := range rules {
		name, ok := archx86_64.SyscallName(rule.Syscall)
		if !ok {
			continue
		}
		syscall := spec.LinuxSyscall{
			Names:  []string{name},
			Action: actionNames[rule.Action],
		}
		for _, pred := range rule.Predicates {
			syscall.Args = append(syscall.Args, spec.LinuxSeccompArg{
				Index: uint(pred.ArgIndex),
				Value: pred.Datum,
				Op:    rawOpNames[pred.Op],
			})
		}
		seccomp.Syscalls = append(seccomp.Syscalls, syscall)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(seccomp)
}
