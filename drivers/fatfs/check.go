package fatfs

import (
	"fmt"

	osfs "github.com/Mouaz7/Os-filesystem"
	"github.com/Mouaz7/Os-filesystem/drivers/common"
	"github.com/hashicorp/go-multierror"
)

// CheckReport summarizes a consistency check of the whole volume.
type CheckReport struct {
	Files       uint
	Directories uint
	// UsedBlocks is the number of blocks reachable from the root, including the
	// two reserved ones.
	UsedBlocks uint
	FreeBlocks uint
	// LeakedBlocks are allocated in the table but not reachable from any entry.
	LeakedBlocks []common.BlockID
}

type pendingDirectory struct {
	block  common.BlockID
	parent common.BlockID
	path   string
}

// Check walks every directory and chain on the volume without modifying
// anything. Every inconsistency found is returned together in a single error;
// the report is filled in even when problems are found.
func (driver *Driver) Check() (CheckReport, error) {
	report := CheckReport{}
	var problems *multierror.Error

	corrupted := func(format string, args ...any) {
		problems = multierror.Append(
			problems, osfs.ErrFileSystemCorrupted.WithMessage(fmt.Sprintf(format, args...)))
	}

	table, err := LoadAllocationTable(driver.device)
	if err != nil {
		return report, err
	}

	usage := common.NewUsageMap(table.TotalBlocks())
	for _, reserved := range []common.BlockID{RootDirBlock, FATBlock} {
		usage.Mark(reserved)
		if value, _ := table.Get(reserved); value != EndOfChain {
			corrupted("reserved block %d has table entry %#04x", reserved, value)
		}
	}

	claim := func(block common.BlockID, owner string) bool {
		alreadyUsed, err := usage.Mark(block)
		if err != nil {
			corrupted("%s: %s", owner, err)
			return false
		}
		if alreadyUsed {
			corrupted("%s: block %d is cross-linked", owner, block)
			return false
		}
		return true
	}

	queue := []pendingDirectory{{block: RootDirBlock, parent: RootDirBlock, path: ""}}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		dir, err := ReadDirectory(driver.device, current.block)
		if err != nil {
			return report, err
		}

		parent, hasParent := dir.Parent()
		if current.block == RootDirBlock {
			if hasParent {
				corrupted("root directory has a %q entry", ParentDirName)
			}
		} else if !hasParent {
			corrupted("%s: missing %q entry", current.path, ParentDirName)
		} else if parent != current.parent {
			corrupted(
				"%s: %q points to block %d, expected %d",
				current.path,
				ParentDirName,
				parent,
				current.parent)
		}

		seen := map[string]bool{}
		for _, entry := range dir.Used() {
			if entry.IsParentLink() {
				continue
			}

			path := current.path + pathSeparator + entry.Name
			if seen[entry.Name] {
				corrupted("%s: duplicate name", path)
			}
			seen[entry.Name] = true

			if entry.IsDir() {
				report.Directories++
				if !claim(entry.FirstBlock, path) {
					continue
				}
				if value, _ := table.Get(entry.FirstBlock); value != EndOfChain {
					corrupted(
						"%s: directory block %d has table entry %#04x",
						path,
						entry.FirstBlock,
						value)
				}
				queue = append(
					queue,
					pendingDirectory{block: entry.FirstBlock, parent: current.block, path: path})
				continue
			}

			report.Files++
			chain, err := table.Chain(entry.FirstBlock)
			if err != nil {
				corrupted("%s: %s", path, err)
				continue
			}

			expectedBlocks := driver.geometry.LengthToNumBlocks(uint(entry.Size))
			if expectedBlocks == 0 {
				expectedBlocks = 1
			}
			if uint(len(chain)) != expectedBlocks {
				corrupted(
					"%s: size %d needs %d blocks, chain has %d",
					path,
					entry.Size,
					expectedBlocks,
					len(chain))
			}
			for _, block := range chain {
				claim(block, path)
			}
		}
	}

	for i := uint(FirstDataBlock); i < table.TotalBlocks(); i++ {
		block := common.BlockID(i)
		if !table.IsFree(block) && !usage.IsMarked(block) {
			report.LeakedBlocks = append(report.LeakedBlocks, block)
		}
	}
	if len(report.LeakedBlocks) > 0 {
		corrupted("%d allocated blocks are unreachable: %v", len(report.LeakedBlocks), report.LeakedBlocks)
	}

	report.UsedBlocks = usage.Count()
	report.FreeBlocks = table.FreeBlocks()
	return report, problems.ErrorOrNil()
}
