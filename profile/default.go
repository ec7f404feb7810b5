// Package profile builds a starter set of filterdb rules for a general
// purpose container workload: a broad unconditional allow-list plus a
// handful of argument-conditional rules for syscalls whose safety depends on
// the value of one argument.
package profile

import (
	"github.com/scantist-ossops-m2/seccompdb/filterdb"
	"github.com/scantist-ossops-m2/seccompdb/logging"
)

// Resolver maps a syscall name to its number on the target architecture.
// archx86_64.SyscallNumber satisfies this signature; tests and other
// architectures can supply their own.
type Resolver func(name string) (int, bool)

// unconditionalAllow is a representative slice of syscalls considered safe
// to allow outright for a general purpose container workload.
var unconditionalAllow = []string{
	"accept", "accept4", "access", "arch_prctl", "bind", "brk",
	"capget", "capset", "chdir", "chmod", "chown", "clock_getres",
	"clock_gettime", "clock_nanosleep", "close", "close_range", "connect",
	"copy_file_range", "creat", "dup", "dup2", "dup3", "epoll_create",
	"epoll_create1", "epoll_ctl", "epoll_pwait", "epoll_wait", "eventfd",
	"eventfd2", "execve", "execveat", "exit", "exit_group", "faccessat",
	"faccessat2", "fadvise64", "fallocate", "fchdir", "fchmod", "fchmodat",
	"fchown", "fchownat", "fcntl", "flock", "fork", "fstat", "fstatfs",
	"fsync", "ftruncate", "futex", "getcwd", "getdents", "getdents64",
	"getegid", "geteuid", "getgid", "getgroups", "getpeername", "getpgid",
	"getpgrp", "getpid", "getppid", "getpriority", "getrandom",
	"getresgid", "getresuid", "getrlimit", "getrusage", "getsid",
	"getsockname", "getsockopt", "gettid", "gettimeofday", "getuid",
	"ioctl", "listen", "lseek", "lstat", "madvise", "mkdir", "mkdirat",
	"mmap", "mprotect", "mremap", "msync", "munmap", "nanosleep", "open",
	"openat", "pipe", "pipe2", "poll", "ppoll", "pread64", "preadv",
	"prlimit64", "pselect6", "pwrite64", "pwritev", "read", "readlink",
	"readlinkat", "readv", "recvfrom", "recvmmsg", "recvmsg", "rename",
	"renameat", "renameat2", "rmdir", "rt_sigaction", "rt_sigpending",
	"rt_sigprocmask", "rt_sigqueueinfo", "rt_sigreturn", "rt_sigsuspend",
	"rt_sigtimedwait", "sched_getaffinity", "sched_yield", "select",
	"sendfile", "sendmmsg", "sendmsg", "sendto", "setfsgid", "setfsuid",
	"setgid", "setgroups", "setpgid", "setpriority", "setregid",
	"setresgid", "setresuid", "setreuid", "setrlimit", "setsid",
	"setsockopt", "setuid", "shutdown", "sigaltstack", "socketpair",
	"stat", "statfs", "statx", "symlink", "symlinkat", "sync",
	"sync_file_range", "tgkill", "time", "timer_create", "timer_delete",
	"timer_settime", "truncate", "umask", "uname", "unlink", "unlinkat",
	"utime", "utimensat", "utimes", "vfork", "wait4", "waitid", "write",
	"writev",
}

// afVsock is AF_VSOCK (linux/socket.h); kept local rather than importing
// golang.org/x/sys/unix here so this package stays usable for cross-compiled
// profile generation independent of the build's GOOS.
const afVsock = 40

// personalityFlags are the ADDR_*-free personality() values a container may
// safely request; every other value is denied. ADDR_NO_RANDOMIZE is
// intentionally excluded.
var personalityFlags = []uint64{0x0, 0x0008, 0x20000, 0x20008, 0xffffffff}

// DefaultRules builds the starter rule set, resolving syscall names to
// numbers with resolve. Names resolve can't map are skipped and returned
// separately so the caller can log them rather than fail outright — running
// on an unfamiliar kernel/arch combination shouldn't make the whole profile
// unusable.
func DefaultRules(resolve Resolver) (rules []filterdb.Rule, unresolved []string) {
	log := logging.WithOperation(logging.Default(), "profile.DefaultRules")

	for _, name := range unconditionalAllow {
		nr, ok := resolve(name)
		if !ok {
			unresolved = append(unresolved, name)
			continue
		}
		rules = append(rules, filterdb.Rule{Syscall: nr, Action: filterdb.ActionAllow})
	}

	if nr, ok := resolve("socket"); ok {
		rules = append(rules, filterdb.Rule{
			Syscall: nr,
			Action:  filterdb.ActionAllow,
			Predicates: []filterdb.RawPredicate{
				{ArgIndex: 0, Op: filterdb.RawNE, Datum: afVsock},
			},
		})
	} else {
		unresolved = append(unresolved, "socket")
	}

	if nr, ok := resolve("personality"); ok {
		for _, flag := range personalityFlags {
			rules = append(rules, filterdb.Rule{
				Syscall: nr,
				Action:  filterdb.ActionAllow,
				Predicates: []filterdb.RawPredicate{
					{ArgIndex: 0, Op: filterdb.RawEQ, Datum: flag},
				},
			})
		}
	} else {
		unresolved = append(unresolved, "personality")
	}

	if len(unresolved) > 0 {
		log.Warn("some default-profile syscalls did not resolve", "count", len(unresolved), "names", unresolved)
	}
	return rules, unresolved
}
