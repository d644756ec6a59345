//go:build unix || linux || darwin

// flock(2) implementation for Unix platforms.
package file

import "syscall"

func (l *dirLock) lockExclusive() error {
	return syscall.Flock(int(l.f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
}

func (l *dirLock) unlock() error {
	return syscall.Flock(int(l.f.Fd()), syscall.LOCK_UN)
}
