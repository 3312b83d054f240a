//go:build windows

package trash

import (
	"fmt"
	"path/filepath"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	shell32              = windows.NewLazySystemDLL("shell32.dll")
	procSHFileOperationW = shell32.NewProc("SHFileOperationW")
)

// shFileOpStruct is SHFILEOPSTRUCTW.
type shFileOpStruct struct {
	hwnd                  uintptr
	wFunc                 uint32
	pFrom                 *uint16
	pTo                   *uint16
	fFlags                uint16
	fAnyOperationsAborted int32
	hNameMappings         uintptr
	lpszProgressTitle     *uint16
}

const (
	foDelete          = 0x0003
	fofSilent         = 0x0004
	fofNoConfirmation = 0x0010
	fofAllowUndo      = 0x0040
	fofNoErrorUI      = 0x0400
)

// recycleBin names the virtual Recycle Bin folder; the shell decides where
// on each drive the items go.
const recycleBin = "shell:RecycleBinFolder"

func defaultDir() string {
	return recycleBin
}

func displayName() string {
	return "Recycle Bin"
}

func (b *Bin) ready() bool {
	return procSHFileOperationW.Find() == nil
}

// move deletes absPath with undo allowed, which sends it to the Recycle Bin.
func (b *Bin) move(absPath string) (string, error) {
	// the source list is double NUL terminated
	from, err := windows.UTF16PtrFromString(absPath + "\x00")
	if err != nil {
		return "", err
	}
	op := shFileOpStruct{
		wFunc:  foDelete,
		pFrom:  from,
		fFlags: fofAllowUndo | fofNoConfirmation | fofNoErrorUI | fofSilent,
	}
	if ret, _, _ := procSHFileOperationW.Call(uintptr(unsafe.Pointer(&op))); ret != 0 {
		return "", fmt.Errorf("cannot move %s to the Recycle Bin: SHFileOperationW code %#x", absPath, ret)
	}
	if op.fAnyOperationsAborted != 0 {
		return "", fmt.Errorf("moving %s to the Recycle Bin was aborted", absPath)
	}
	return filepath.Join(recycleBin, filepath.Base(absPath)), nil
}
