package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/udsgo/ioregion/cmd/regionctl/conf"
	"github.com/udsgo/ioregion/pkg/ioregion"
	"github.com/udsgo/ioregion/pkg/regions/blockregion"
	"github.com/udsgo/ioregion/pkg/regions/fileregion"
	"github.com/udsgo/ioregion/pkg/regions/mmapregion"

	"github.com/dustin/go-humanize"
)

var toolName = fmt.Sprintf("Region control (%s)", os.Args[0])

//Simple usage: go build && ./regionctl -path=/tmp/index.vol -limit=1MiB info
func main() {
	cfg := conf.MustGetConfig()
	log.Printf(toolName+": %s", cfg)

	region := mustGetRegion(cfg)

	var err error
	switch cfg.Op {
	case conf.OpInfo:
		err = runInfo(region)
	case conf.OpRead:
		err = runRead(region, int64(cfg.Offset), int64(cfg.Count))
	case conf.OpWrite:
		err = runWrite(region, int64(cfg.Offset))
	case conf.OpSync:
		err = region.Sync()
	default:
		log.Fatalf("Bug: Could not dispatch: unknown operation enum: %d", cfg.Op)
	}
	if err != nil {
		log.Fatalf("Operation %q failed: %s", cfg.Op, err)
	}

	if err = ioregion.Put(region); err != nil {
		log.Fatalf("Could not release region: %s", err)
	}
}

func mustGetRegion(cfg *conf.Config) (region ioregion.Region) {
	var err error

	switch cfg.Backing {
	case conf.BackFile:
		region, err = fileregion.New(cfg.Path, int64(cfg.BlockSize), int64(cfg.Limit))
		if err != nil {
			log.Fatalf("Could not create file backed region: %s", err)
		}

	case conf.BackMmap:
		region, err = mmapregion.New(cfg.Path, int64(cfg.BlockSize), int64(cfg.Limit))
		if err != nil {
			log.Fatalf("Could not create memory-mapped region: %s", err)
		}

	case conf.BackDevice:
		//The device dictates its own block size (the logical sector size)
		region, err = blockregion.New(cfg.Path, int64(cfg.DevStart), int64(cfg.Limit))
		if err != nil {
			log.Fatalf("Could not create block-device backed region: %s", err)
		}

	default:
		log.Fatalf("Bug: Could not create region: unknown backing enum: %d", cfg.Backing)
	}

	return region
}

func runInfo(region ioregion.Region) error {
	limit, err := region.Limit()
	if err != nil {
		return fmt.Errorf("Could not get region limit: %w", err)
	}
	dataSize, err := region.DataSize()
	if err != nil {
		return fmt.Errorf("Could not get region data size: %w", err)
	}

	limitDesc := "unbounded"
	if limit != ioregion.Unbounded {
		limitDesc = fmt.Sprintf("%s (%d bytes)", humanize.IBytes(uint64(limit)), limit)
	}
	blockSize := region.BlockSize()

	fmt.Printf("Block size: %s (%d bytes)\n", humanize.IBytes(uint64(blockSize)), blockSize)
	fmt.Printf("Limit:      %s\n", limitDesc)
	fmt.Printf("Data size:  %s (%d bytes)\n", humanize.IBytes(uint64(dataSize)), dataSize)
	return nil
}

func runRead(region ioregion.Region, off, count int64) error {
	blockSize := region.BlockSize()
	buf := make([]byte, blockSize*16)
	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	for count > 0 {
		n, err := region.ReadAt(buf, off, 1)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("Could not read at offset %d: %w", off, err)
		}
		if int64(n) > count {
			n = int(count)
		}
		if _, err = out.Write(buf[:n]); err != nil {
			return fmt.Errorf("Could not write to stdout: %w", err)
		}
		off += int64(n)
		count -= int64(n)
		if int64(n)%blockSize != 0 { //a partial tail block cannot be advanced past
			break
		}
	}
	return nil
}

func runWrite(region ioregion.Region, off int64) error {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("Could not read data to write from stdin: %w", err)
	}
	inputLen := len(data)
	if inputLen == 0 {
		return errors.New("No data to write was provided on stdin")
	}

	blockSize := region.BlockSize()
	if tail := int64(inputLen) % blockSize; tail != 0 { //zero pad to a whole block
		data = append(data, make([]byte, blockSize-tail)...)
	}

	if err = region.WriteAt(data, off, len(data)); err != nil {
		return fmt.Errorf("Could not write %d bytes at offset %d: %w", len(data), off, err)
	}
	if err = region.Sync(); err != nil && !errors.Is(err, ioregion.ErrUnsupported) {
		return fmt.Errorf("Could not sync written data: %w", err)
	}

	log.Printf("Wrote %s at offset %d (%s of input, zero padded to whole blocks)",
		humanize.IBytes(uint64(len(data))), off, humanize.IBytes(uint64(inputLen)))
	return nil
}
