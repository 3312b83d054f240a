package fs

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Mount is a mounted filesystem offered as a quick start location.
type Mount struct {
	Name   string
	Path   string
	FSType string
}

// virtualFS lists filesystem types that are never worth scanning.
var virtualFS = map[string]bool{
	"proc":       true,
	"sysfs":      true,
	"devtmpfs":   true,
	"devpts":     true,
	"tmpfs":      true,
	"cgroup":     true,
	"cgroup2":    true,
	"securityfs": true,
	"debugfs":    true,
	"tracefs":    true,
	"pstore":     true,
	"bpf":        true,
	"mqueue":     true,
	"hugetlbfs":  true,
	"configfs":   true,
	"fusectl":    true,
	"autofs":     true,
	"squashfs":   true,
	"overlay":    true,
	"nsfs":       true,
}

// parseMounts reads a /proc/mounts style table. The root filesystem always
// comes first.
func parseMounts(r io.Reader) []Mount {
	mounts := []Mount{{Name: "/ (Root)", Path: "/"}}
	seen := map[string]bool{"/": true}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 3 {
			continue
		}
		mp := unescapeMountPath(fields[1])
		fsType := fields[2]
		if mp == "/" {
			mounts[0].FSType = fsType
			continue
		}
		if seen[mp] || virtualFS[fsType] {
			continue
		}
		if strings.HasPrefix(mp, "/sys") || strings.HasPrefix(mp, "/proc") ||
			strings.HasPrefix(mp, "/dev") || strings.HasPrefix(mp, "/run") ||
			strings.HasPrefix(mp, "/snap") {
			continue
		}
		name := mp
		if strings.HasPrefix(mp, "/media/") || strings.HasPrefix(mp, "/mnt/") {
			name = filepath.Base(mp)
		} else if mp == "/home" {
			name = "Home"
		}
		seen[mp] = true
		mounts = append(mounts, Mount{Name: name, Path: mp, FSType: fsType})
	}
	return mounts
}

// unescapeMountPath decodes the octal escapes the kernel uses for blanks.
func unescapeMountPath(s string) string {
	r := strings.NewReplacer(`\040`, " ", `\011`, "\t", `\012`, "\n", `\134`, `\`)
	return r.Replace(s)
}

// ListMounts returns the mounted filesystems plus the user's home directory.
func ListMounts() []Mount {
	var mounts []Mount
	if f, err := os.Open("/proc/mounts"); err == nil {
		mounts = parseMounts(f)
		f.Close()
	} else {
		mounts = []Mount{{Name: "/ (Root)", Path: "/"}}
	}
	if home, err := os.UserHomeDir(); err == nil {
		mounts = append(mounts, Mount{Name: "~", Path: home})
	}
	return mounts
}
