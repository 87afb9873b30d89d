package shmem

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/openziti/bufhub"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Allocator implements bufhub.Allocator over mmapped segment files under a root
// directory. Segment names are unique per allocation; other processes reach the same
// buffer by opening the segment path.
//
type Allocator struct {
	root string
}

func NewAllocator(root string) (*Allocator, error) {
	if err := os.MkdirAll(root, os.ModePerm); err != nil {
		return nil, errors.Wrapf(err, "error creating allocator root [%s]", root)
	}
	return &Allocator{root: root}, nil
}

func (self *Allocator) Allocate(id int32, desc bufhub.BufferDescriptor, userMetadataSize uint32) (bufhub.Resource, bufhub.Metadata, error) {
	if desc.Width == 0 || desc.Height == 0 || desc.Layers == 0 {
		return nil, nil, errors.Errorf("invalid descriptor [%s]", desc.Geometry())
	}

	bufferSize := storageSize(desc)
	name := strings.Replace(uuid.New().String(), "-", "", -1)
	path := filepath.Join(self.root, fmt.Sprintf("%d_%s.buf", id, name))

	segment, err := createSegment(path, segmentSize(userMetadataSize, bufferSize))
	if err != nil {
		return nil, nil, err
	}
	segment.init(id, userMetadataSize, bufferSize)

	logrus.Debugf("allocated segment [%s] for buffer node [#%d]", path, id)
	shared := &sharedSegment{segment: segment}
	return &segmentResource{shared}, &segmentMetadata{shared}, nil
}

func storageSize(desc bufhub.BufferDescriptor) uint64 {
	if desc.Format == bufhub.FORMAT_BLOB {
		return uint64(desc.Width)
	}
	return uint64(desc.Width) * uint64(desc.Height) * uint64(desc.Layers) * 4
}

// sharedSegment fans one segment out to its resource and metadata facets; the segment is
// destroyed once both have been released.
type sharedSegment struct {
	segment  *Segment
	releases int32
}

func (self *sharedSegment) release() {
	self.releases++
	if self.releases == 2 {
		if err := self.segment.destroy(); err != nil {
			logrus.Errorf("error destroying segment (%v)", err)
		}
	}
}

type segmentResource struct {
	shared *sharedSegment
}

func (self *segmentResource) Size() uint64 {
	return self.shared.segment.BufferSize()
}

func (self *segmentResource) Release() {
	self.shared.release()
}

type segmentMetadata struct {
	shared *sharedSegment
}

func (self *segmentMetadata) State() uint32 {
	return self.shared.segment.State()
}

func (self *segmentMetadata) SetState(state uint32) {
	self.shared.segment.SetState(state)
}

func (self *segmentMetadata) QueueIndex() uint64 {
	return self.shared.segment.QueueIndex()
}

func (self *segmentMetadata) SetQueueIndex(index uint64) {
	self.shared.segment.SetQueueIndex(index)
}

func (self *segmentMetadata) UserSize() uint32 {
	return self.shared.segment.UserMetadataSize()
}

func (self *segmentMetadata) Release() {
	self.shared.release()
}
