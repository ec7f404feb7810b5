package archx86_64

import "testing"

func TestSyscallNumber(t *testing.T) {
	tests := []struct {
		name string
		want int
		ok   bool
	}{
		{"read", 0, true},
		{"write", 1, true},
		{"execve", 59, true},
		{"not_a_syscall", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SyscallNumber(tt.name)
			if ok != tt.ok {
				t.Fatalf("SyscallNumber(%q) ok = %v, want %v", tt.name, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("SyscallNumber(%q) = %d, want %d", tt.name, got, tt.want)
			}
		})
	}
}

func TestSyscallName_RoundTrip(t *testing.T) {
	name, ok := SyscallName(59)
	if !ok || name != "execve" {
		t.Errorf("SyscallName(59) = (%q, %v), want (execve, true)", name, ok)
	}
}

func TestSyscallName_Unknown(t *testing.T) {
	if _, ok := SyscallName(999999); ok {
		t.Error("SyscallName(999999) ok = true, want false")
	}
}

func TestLen(t *testing.T) {
	if Len() < 250 {
		t.Errorf("Len() = %d, want at least 250 resolvable syscalls", Len())
	}
}
