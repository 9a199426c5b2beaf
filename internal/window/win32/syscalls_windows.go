//go:build windows

package win32

import (
	"fmt"
	"unsafe"

	syscall "golang.org/x/sys/windows"
)

type rect struct {
	left, top, right, bottom int32
}

type point struct {
	x, y int32
}

type wndClassEx struct {
	cbSize        uint32
	style         uint32
	lpfnWndProc   uintptr
	cnClsExtra    int32
	cbWndExtra    int32
	hInstance     syscall.Handle
	hIcon         syscall.Handle
	hCursor       syscall.Handle
	hbrBackground syscall.Handle
	lpszMenuName  *uint16
	lpszClassName *uint16
	hIconSm       syscall.Handle
}

type msg struct {
	hwnd     syscall.Handle
	message  uint32
	wParam   uintptr
	lParam   uintptr
	time     uint32
	pt       point
	lPrivate uint32
}

const (
	_CS_OWNDC = 0x0020

	_SW_HIDE   = 0
	_SW_NORMAL = 1

	_SWP_NOSIZE     = 0x0001
	_SWP_NOMOVE     = 0x0002
	_SWP_NOZORDER   = 0x0004
	_SWP_NOACTIVATE = 0x0010

	_GWL_STYLE   = -16
	_GWL_EXSTYLE = -20

	_UOI_NAME = 2

	_PM_REMOVE = 0x0001

	_WM_MOVE       = 0x0003
	_WM_SIZE       = 0x0005
	_WM_CLOSE      = 0x0010
	_WM_SHOWWINDOW = 0x0018
	_WM_APP        = 0x8000

	// posted to the thread to mark the end of a drain snapshot
	_WM_DRAIN_MARK = _WM_APP + 0x2a
)

var (
	kernel32          = syscall.NewLazySystemDLL("kernel32.dll")
	_GetModuleHandleW = kernel32.NewProc("GetModuleHandleW")

	user32                    = syscall.NewLazySystemDLL("user32.dll")
	_AdjustWindowRectEx       = user32.NewProc("AdjustWindowRectEx")
	_ClientToScreen           = user32.NewProc("ClientToScreen")
	_CreateWindowEx           = user32.NewProc("CreateWindowExW")
	_DefWindowProc            = user32.NewProc("DefWindowProcW")
	_DestroyWindow            = user32.NewProc("DestroyWindow")
	_DispatchMessage          = user32.NewProc("DispatchMessageW")
	_GetClientRect            = user32.NewProc("GetClientRect")
	_GetProcessWindowStation  = user32.NewProc("GetProcessWindowStation")
	_GetUserObjectInformation = user32.NewProc("GetUserObjectInformationW")
	_GetWindowLong            = user32.NewProc("GetWindowLongW")
	_GetWindowText            = user32.NewProc("GetWindowTextW")
	_GetWindowTextLength      = user32.NewProc("GetWindowTextLengthW")
	_PeekMessage              = user32.NewProc("PeekMessageW")
	_PostThreadMessage        = user32.NewProc("PostThreadMessageW")
	_RegisterClassExW         = user32.NewProc("RegisterClassExW")
	_SetWindowPos             = user32.NewProc("SetWindowPos")
	_SetWindowText            = user32.NewProc("SetWindowTextW")
	_ShowWindow               = user32.NewProc("ShowWindow")
	_TranslateMessage         = user32.NewProc("TranslateMessage")
	_UnregisterClass          = user32.NewProc("UnregisterClassW")

	vulkan                   = syscall.NewLazySystemDLL("vulkan-1.dll")
	_vkCreateWin32SurfaceKHR = vulkan.NewProc("vkCreateWin32SurfaceKHR")
)

func getModuleHandle() (syscall.Handle, error) {
	h, _, err := _GetModuleHandleW.Call(uintptr(0))
	if h == 0 {
		return 0, fmt.Errorf("GetModuleHandleW failed: %v", err)
	}
	return syscall.Handle(h), nil
}

// processWindowStation returns the name of the window station the process runs in.
func processWindowStation() (string, error) {
	h, _, err := _GetProcessWindowStation.Call()
	if h == 0 {
		return "", fmt.Errorf("GetProcessWindowStation failed: %v", err)
	}
	var buf [64]uint16
	var needed uint32
	r, _, err := _GetUserObjectInformation.Call(h, _UOI_NAME,
		uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)*2), uintptr(unsafe.Pointer(&needed)))
	if r == 0 {
		return "", fmt.Errorf("GetUserObjectInformationW failed: %v", err)
	}
	return syscall.UTF16ToString(buf[:]), nil
}

func adjustWindowRectEx(r *rect, dwStyle uint32, bMenu int, dwExStyle uint32) {
	_AdjustWindowRectEx.Call(uintptr(unsafe.Pointer(r)), uintptr(dwStyle), uintptr(bMenu), uintptr(dwExStyle))
}

func clientToScreen(hwnd syscall.Handle, p *point) {
	_ClientToScreen.Call(uintptr(hwnd), uintptr(unsafe.Pointer(p)))
}

func createWindowEx(dwExStyle uint32, className *uint16, windowName string, dwStyle uint32, x, y, w, h int32, hWndParent, hMenu, hInstance syscall.Handle, lpParam uintptr) (syscall.Handle, error) {
	name, err := syscall.UTF16PtrFromString(windowName)
	if err != nil {
		return 0, err
	}
	hwnd, _, err := _CreateWindowEx.Call(
		uintptr(dwExStyle),
		uintptr(unsafe.Pointer(className)),
		uintptr(unsafe.Pointer(name)),
		uintptr(dwStyle),
		uintptr(x), uintptr(y),
		uintptr(w), uintptr(h),
		uintptr(hWndParent),
		uintptr(hMenu),
		uintptr(hInstance),
		uintptr(lpParam))
	if hwnd == 0 {
		return 0, fmt.Errorf("CreateWindowEx failed: %v", err)
	}
	return syscall.Handle(hwnd), nil
}

func defWindowProc(hwnd syscall.Handle, msg uint32, wparam, lparam uintptr) uintptr {
	r, _, _ := _DefWindowProc.Call(uintptr(hwnd), uintptr(msg), wparam, lparam)
	return r
}

func destroyWindow(hwnd syscall.Handle) error {
	r, _, err := _DestroyWindow.Call(uintptr(hwnd))
	if r == 0 {
		return fmt.Errorf("DestroyWindow failed: %v", err)
	}
	return nil
}

func dispatchMessage(m *msg) {
	_DispatchMessage.Call(uintptr(unsafe.Pointer(m)))
}

func getClientRect(hwnd syscall.Handle, r *rect) error {
	ok, _, err := _GetClientRect.Call(uintptr(hwnd), uintptr(unsafe.Pointer(r)))
	if ok == 0 {
		return fmt.Errorf("GetClientRect failed: %v", err)
	}
	return nil
}

func getWindowLong(hwnd syscall.Handle, index int32) uint32 {
	r, _, _ := _GetWindowLong.Call(uintptr(hwnd), uintptr(index))
	return uint32(r)
}

func getWindowText(hwnd syscall.Handle) string {
	n, _, _ := _GetWindowTextLength.Call(uintptr(hwnd))
	if n == 0 {
		return ""
	}
	buf := make([]uint16, n+1)
	_GetWindowText.Call(uintptr(hwnd), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return syscall.UTF16ToString(buf)
}

func peekMessage(m *msg, hwnd syscall.Handle, wMsgFilterMin, wMsgFilterMax, wRemoveMsg uint32) bool {
	r, _, _ := _PeekMessage.Call(uintptr(unsafe.Pointer(m)), uintptr(hwnd), uintptr(wMsgFilterMin), uintptr(wMsgFilterMax), uintptr(wRemoveMsg))
	return r != 0
}

func postThreadMessage(threadID uint32, msg uint32, wParam, lParam uintptr) error {
	r, _, err := _PostThreadMessage.Call(uintptr(threadID), uintptr(msg), wParam, lParam)
	if r == 0 {
		return fmt.Errorf("PostThreadMessageW failed: %v", err)
	}
	return nil
}

func registerClassEx(cls *wndClassEx) (uint16, error) {
	a, _, err := _RegisterClassExW.Call(uintptr(unsafe.Pointer(cls)))
	if a == 0 {
		return 0, fmt.Errorf("RegisterClassExW failed: %v", err)
	}
	return uint16(a), nil
}

func setWindowPos(hwnd syscall.Handle, x, y, w, h int32, flags uint32) error {
	r, _, err := _SetWindowPos.Call(uintptr(hwnd), 0, uintptr(x), uintptr(y), uintptr(w), uintptr(h), uintptr(flags))
	if r == 0 {
		return fmt.Errorf("SetWindowPos failed: %v", err)
	}
	return nil
}

func setWindowText(hwnd syscall.Handle, text string) error {
	p, err := syscall.UTF16PtrFromString(text)
	if err != nil {
		return err
	}
	r, _, err := _SetWindowText.Call(uintptr(hwnd), uintptr(unsafe.Pointer(p)))
	if r == 0 {
		return fmt.Errorf("SetWindowTextW failed: %v", err)
	}
	return nil
}

func showWindow(hwnd syscall.Handle, nCmdShow int32) {
	_ShowWindow.Call(uintptr(hwnd), uintptr(nCmdShow))
}

func translateMessage(m *msg) {
	_TranslateMessage.Call(uintptr(unsafe.Pointer(m)))
}

func unregisterClass(cls uint16, hInst syscall.Handle) {
	_UnregisterClass.Call(uintptr(cls), uintptr(hInst))
}
