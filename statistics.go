package memsim

import "math"

// Statistics holds summary counters for one or more simulated address spaces
type Statistics struct {
	SpaceCount      int
	AllocationCount int
	SpaceSize       int
	AllocatedSize   int
}

func (s *Statistics) Clear() {
	s.SpaceCount = 0
	s.AllocationCount = 0
	s.SpaceSize = 0
	s.AllocatedSize = 0
}

func (s *Statistics) AddStatistics(other *Statistics) {
	s.SpaceCount += other.SpaceCount
	s.AllocationCount += other.AllocationCount
	s.SpaceSize += other.SpaceSize
	s.AllocatedSize += other.AllocatedSize
}

// FreeSize is the number of addresses not covered by an allocation
func (s *Statistics) FreeSize() int {
	return s.SpaceSize - s.AllocatedSize
}

type DetailedStatistics struct {
	Statistics
	FreeRegionCount   int
	AllocationSizeMin int
	AllocationSizeMax int
	FreeRegionSizeMin int
	FreeRegionSizeMax int
}

func (s *DetailedStatistics) Clear() {
	s.Statistics.Clear()
	s.FreeRegionCount = 0
	s.AllocationSizeMin = math.MaxInt
	s.AllocationSizeMax = 0
	s.FreeRegionSizeMin = math.MaxInt
	s.FreeRegionSizeMax = 0
}

func (s *DetailedStatistics) AddFreeRegion(size int) {
	s.FreeRegionCount++

	if size < s.FreeRegionSizeMin {
		s.FreeRegionSizeMin = size
	}

	if size > s.FreeRegionSizeMax {
		s.FreeRegionSizeMax = size
	}
}

func (s *DetailedStatistics) AddAllocation(size int) {
	s.AllocationCount++
	s.AllocatedSize += size

	if size < s.AllocationSizeMin {
		s.AllocationSizeMin = size
	}

	if size > s.AllocationSizeMax {
		s.AllocationSizeMax = size
	}
}

func (s *DetailedStatistics) AddDetailedStatistics(other *DetailedStatistics) {
	s.Statistics.AddStatistics(&other.Statistics)
	s.FreeRegionCount += other.FreeRegionCount

	if other.FreeRegionSizeMin < s.FreeRegionSizeMin {
		s.FreeRegionSizeMin = other.FreeRegionSizeMin
	}

	if other.FreeRegionSizeMax > s.FreeRegionSizeMax {
		s.FreeRegionSizeMax = other.FreeRegionSizeMax
	}

	if other.AllocationSizeMin < s.AllocationSizeMin {
		s.AllocationSizeMin = other.AllocationSizeMin
	}

	if other.AllocationSizeMax > s.AllocationSizeMax {
		s.AllocationSizeMax = other.AllocationSizeMax
	}
}

// ExternalFragmentation reports how much of the free space lies outside the largest free region,
// from 0 (one contiguous free region, or no free space) to just under 1
func (s *DetailedStatistics) ExternalFragmentation() float64 {
	free := s.FreeSize()
	if free <= 0 || s.FreeRegionCount == 0 {
		return 0
	}

	return 1 - float64(s.FreeRegionSizeMax)/float64(free)
}
