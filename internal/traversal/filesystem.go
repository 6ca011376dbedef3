package traversal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/afero"
)

// readBatchSize is the number of directory entries requested per Readdir call.
const readBatchSize = 128

// FileSystem walks a directory hierarchy stored in an afero filesystem.
type FileSystem struct {
	filesystem afero.Fs
}

// NewFileSystem returns a provider over filesystem. A nil filesystem selects the OS filesystem.
func NewFileSystem(filesystem afero.Fs) *FileSystem {
	if filesystem == nil {
		filesystem = afero.NewOsFs()
	}
	return &FileSystem{filesystem: filesystem}
}

// Walk produces root and everything below it according to policy.
func (provider *FileSystem) Walk(ctx context.Context, root string, policy Policy, visit VisitFunc) error {
	if visit == nil {
		return ErrNilVisitor
	}
	if ctx == nil {
		ctx = context.Background()
	}

	walker := &fileSystemWalker{
		ctx:        ctx,
		filesystem: provider.filesystem,
		policy:     policy.normalized(),
		visit:      visit,
	}

	cleanRoot := filepath.Clean(root)
	rootEntry, rootError := walker.rootEntry(cleanRoot)
	if rootError != nil {
		return visit(rootEntry, rootError)
	}
	walker.rootDevice, walker.rootDeviceKnown = deviceOf(rootEntry.Info)
	return walker.walk(rootEntry, nil)
}

var _ Provider = (*FileSystem)(nil)

type fileSystemWalker struct {
	ctx             context.Context
	filesystem      afero.Fs
	policy          Policy
	visit           VisitFunc
	open            []*directoryFrame
	rootDevice      uint64
	rootDeviceKnown bool
}

// rootEntry always resolves the root through links.
func (walker *fileSystemWalker) rootEntry(root string) (Entry, error) {
	entry := Entry{Path: root, Name: filepath.Base(root)}
	linkInfo, linkError := walker.lstat(root)
	if linkError != nil {
		return entry, linkError
	}
	entry.Info = linkInfo
	entry.Mode = linkInfo.Mode()
	if linkInfo.Mode()&fs.ModeSymlink == 0 {
		return entry, nil
	}
	entry.IsSymlink = true
	entry.LinkTarget = walker.readlink(root)
	targetInfo, statError := walker.filesystem.Stat(root)
	if statError != nil {
		return entry, statError
	}
	entry.Info = targetInfo
	entry.Mode = targetInfo.Mode()
	return entry, nil
}

func (walker *fileSystemWalker) childEntry(parent *Entry, info fs.FileInfo) (Entry, error) {
	childPath := filepath.Join(parent.Path, info.Name())
	entry := Entry{
		Path:  childPath,
		Name:  info.Name(),
		Depth: parent.Depth + 1,
		Mode:  info.Mode(),
		Info:  info,
	}
	if info.Mode()&fs.ModeSymlink == 0 {
		return entry, nil
	}
	entry.IsSymlink = true
	entry.LinkTarget = walker.readlink(childPath)
	if !walker.policy.FollowLinks {
		return entry, nil
	}
	targetInfo, statError := walker.filesystem.Stat(childPath)
	if statError != nil {
		return entry, statError
	}
	entry.Info = targetInfo
	entry.Mode = targetInfo.Mode()
	return entry, nil
}

func (walker *fileSystemWalker) walk(entry Entry, ancestors []Entry) error {
	if contextError := walker.ctx.Err(); contextError != nil {
		return contextError
	}
	if entry.Depth > walker.policy.MaxDepth {
		return nil
	}

	produce := entry.Depth >= walker.policy.MinDepth
	if produce && walker.policy.Filter != nil && !walker.policy.Filter(&entry) {
		return nil
	}

	if entry.IsSymlink && entry.IsDir() && walker.policy.FollowLinks {
		if ancestor, looped := findAncestor(entry.Info, ancestors); looped {
			return walker.visit(entry, fmt.Errorf("%w: %s resolves to %s", ErrLinkLoop, entry.Path, ancestor.Path))
		}
	}

	descend := entry.IsDir() && entry.Depth < walker.policy.MaxDepth
	if descend && walker.policy.SameFileSystem && !walker.onRootDevice(entry.Info) {
		descend = false
	}

	if produce && !walker.policy.ContentsFirst {
		if visitError := walker.visit(entry, nil); visitError != nil {
			return visitError
		}
	}
	if descend {
		if walkError := walker.walkDirectory(&entry, append(ancestors, entry)); walkError != nil {
			return walkError
		}
	}
	if produce && walker.policy.ContentsFirst {
		return walker.visit(entry, nil)
	}
	return nil
}

func (walker *fileSystemWalker) walkDirectory(directory *Entry, ancestors []Entry) error {
	walker.reserveHandle()
	handle, openError := walker.filesystem.Open(directory.Path)
	if openError != nil {
		return walker.visit(failedEntry(directory), openError)
	}
	frame := &directoryFrame{handle: handle}
	walker.open = append(walker.open, frame)
	defer walker.pop()

	if walker.policy.Compare != nil {
		return walker.walkSorted(directory, frame, ancestors)
	}

	for {
		info, readError := frame.next()
		if errors.Is(readError, io.EOF) {
			return nil
		}
		if readError != nil {
			return walker.visit(failedEntry(directory), readError)
		}
		child, childError := walker.childEntry(directory, info)
		if childError != nil {
			if visitError := walker.visit(failedEntry(&child), childError); visitError != nil {
				return visitError
			}
			continue
		}
		if walkError := walker.walk(child, ancestors); walkError != nil {
			return walkError
		}
	}
}

// walkSorted reads the whole listing so that children can be ordered before any is produced.
func (walker *fileSystemWalker) walkSorted(directory *Entry, frame *directoryFrame, ancestors []Entry) error {
	frame.fill(-1)
	children := make([]Entry, 0, len(frame.buffered))
	for {
		info, readError := frame.next()
		if errors.Is(readError, io.EOF) {
			break
		}
		if readError != nil {
			if visitError := walker.visit(failedEntry(directory), readError); visitError != nil {
				return visitError
			}
			break
		}
		child, childError := walker.childEntry(directory, info)
		if childError != nil {
			if visitError := walker.visit(failedEntry(&child), childError); visitError != nil {
				return visitError
			}
			continue
		}
		children = append(children, child)
	}

	slices.SortStableFunc(children, func(left, right Entry) int {
		return walker.policy.Compare(&left, &right)
	})
	for _, child := range children {
		if walkError := walker.walk(child, ancestors); walkError != nil {
			return walkError
		}
	}
	return nil
}

// reserveHandle drains the oldest open listings into memory until opening one
// more directory stays within MaxOpen.
func (walker *fileSystemWalker) reserveHandle() {
	openHandles := 0
	for _, candidate := range walker.open {
		if candidate.handle != nil {
			openHandles++
		}
	}
	for _, candidate := range walker.open {
		if openHandles < walker.policy.MaxOpen {
			return
		}
		if candidate.handle != nil {
			candidate.fill(-1)
			openHandles--
		}
	}
}

func (walker *fileSystemWalker) pop() {
	last := len(walker.open) - 1
	walker.open[last].close()
	walker.open[last] = nil
	walker.open = walker.open[:last]
}

func (walker *fileSystemWalker) onRootDevice(info fs.FileInfo) bool {
	device, known := deviceOf(info)
	if !known || !walker.rootDeviceKnown {
		return true
	}
	return device == walker.rootDevice
}

func (walker *fileSystemWalker) lstat(path string) (fs.FileInfo, error) {
	if lstater, ok := walker.filesystem.(afero.Lstater); ok {
		info, _, lstatError := lstater.LstatIfPossible(path)
		return info, lstatError
	}
	return walker.filesystem.Stat(path)
}

func (walker *fileSystemWalker) readlink(path string) string {
	reader, ok := walker.filesystem.(afero.LinkReader)
	if !ok {
		return ""
	}
	target, readError := reader.ReadlinkIfPossible(path)
	if readError != nil {
		return ""
	}
	return target
}

func findAncestor(info fs.FileInfo, ancestors []Entry) (Entry, bool) {
	if info == nil {
		return Entry{}, false
	}
	for index := len(ancestors) - 1; index >= 0; index-- {
		if ancestors[index].Info != nil && os.SameFile(ancestors[index].Info, info) {
			return ancestors[index], true
		}
	}
	return Entry{}, false
}

func failedEntry(entry *Entry) Entry {
	return Entry{Path: entry.Path, Name: entry.Name, Depth: entry.Depth}
}

// directoryFrame buffers a directory listing. Once the listing is exhausted,
// failed, or drained to honour the open-handle limit, the handle is closed.
type directoryFrame struct {
	handle       afero.File
	buffered     []fs.FileInfo
	pendingError error
}

func (frame *directoryFrame) next() (fs.FileInfo, error) {
	for len(frame.buffered) == 0 {
		if frame.handle == nil {
			if frame.pendingError != nil {
				pending := frame.pendingError
				frame.pendingError = nil
				return nil, pending
			}
			return nil, io.EOF
		}
		frame.fill(readBatchSize)
	}
	info := frame.buffered[0]
	frame.buffered = frame.buffered[1:]
	return info, nil
}

// fill reads up to count entries, or the rest of the listing when count <= 0.
func (frame *directoryFrame) fill(count int) {
	if frame.handle == nil {
		return
	}
	infos, readError := frame.handle.Readdir(count)
	frame.buffered = append(frame.buffered, infos...)
	switch {
	case readError != nil && !errors.Is(readError, io.EOF):
		frame.pendingError = readError
		frame.close()
	case readError != nil, count <= 0, len(infos) == 0:
		frame.close()
	}
}

func (frame *directoryFrame) close() {
	if frame.handle == nil {
		return
	}
	closeError := frame.handle.Close()
	frame.handle = nil
	if closeError != nil && frame.pendingError == nil {
		frame.pendingError = closeError
	}
}
