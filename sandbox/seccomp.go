//go:build linux

package sandbox

import (
	"fmt"

	seccomp "github.com/seccomp/libseccomp-golang"
	"golang.org/x/sys/unix"
)

// baseAllowedSyscalls is the floor every spawned child needs regardless of
// entry point: enough to finish the construction sequence itself, perform
// the second CLONE_PARENT fork that splits off the long-lived child, wait
// on its own descendants, and exit.
// Unlike a generic sandbox CLI running an arbitrary unknown binary, this
// forkserver's entry points are a closed, statically-known set of Go
// functions with no further execve, so a deny-by-default allowlist here is
// tractable and strictly tighter than an allow-by-default deny-list
// posture would be.
var baseAllowedSyscalls = []string{
	"clone", "clone3", "fork", "vfork",
	"wait4", "waitid", "exit", "exit_group",
	"rt_sigaction", "rt_sigprocmask", "rt_sigreturn", "sigaltstack",
	"read", "write", "readv", "writev", "pread64", "pwrite64",
	"close", "dup", "dup2", "dup3", "fcntl",
	"mmap", "munmap", "mprotect", "brk", "madvise",
	"futex", "nanosleep", "clock_gettime", "clock_nanosleep", "gettimeofday",
	"getpid", "gettid", "getppid", "getuid", "geteuid", "getgid", "getegid",
	"set_tid_address", "set_robust_list", "rseq", "prlimit64", "sched_getaffinity",
	"epoll_create1", "epoll_ctl", "epoll_wait", "epoll_pwait", "poll", "pselect6",
	"openat", "stat", "fstat", "lstat", "newfstatat", "access", "faccessat", "faccessat2",
	"lseek", "ioctl", "pipe2", "eventfd2", "signalfd4",
	"socket", "connect", "bind", "listen", "accept4", "getsockname", "getpeername",
	"setsockopt", "getsockopt", "sendto", "recvfrom", "sendmsg", "recvmsg", "shutdown",
	"restart_syscall", "sched_yield", "getrandom", "uname",
	"execve",
}

// SetupSeccomp performs step 7: install a deny-by-default BPF filter that
// allows only baseAllowedSyscalls plus any entry-point-specific additions,
// returning ENOSYS for everything else. Must run last, after every other
// construction step has made whatever syscalls it needed.
func SetupSeccomp(extraAllowed []string) error {
	if err := unix.Prctl(unix.PR_SET_NO_NEW_PRIVS, 1, 0, 0, 0); err != nil && err != unix.EINVAL {
		return fmt.Errorf("prctl(NO_NEW_PRIVS): %w", err)
	}

	filter, err := seccomp.NewFilter(seccomp.ActErrno.SetReturnCode(int16(unix.ENOSYS)))
	if err != nil {
		return fmt.Errorf("seccomp: new filter: %w", err)
	}
	defer filter.Release()

	allowed := allowSet(extraAllowed)
	allowAct := seccomp.ActAllow
	for name := range allowed {
		sc, err := seccomp.GetSyscallFromName(name)
		if err != nil {
			continue
		}
		if err := filter.AddRule(sc, allowAct); err != nil {
			return fmt.Errorf("seccomp: allow %s: %w", name, err)
		}
	}

	if err := filter.Load(); err != nil {
		return fmt.Errorf("seccomp: load: %w", err)
	}
	return nil
}

func allowSet(extra []string) map[string]struct{} {
	set := make(map[string]struct{}, len(baseAllowedSyscalls)+len(extra))
	for _, s := range baseAllowedSyscalls {
		set[s] = struct{}{}
	}
	for _, s := range extra {
		set[s] = struct{}{}
	}
	return set
}
