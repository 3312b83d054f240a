//go:build !linux && !darwin && !windows

package trash

func defaultDir() string {
	return ""
}

func displayName() string {
	return "Trash"
}

func (b *Bin) ready() bool {
	return false
}

func (b *Bin) move(string) (string, error) {
	return "", ErrUnavailable
}
