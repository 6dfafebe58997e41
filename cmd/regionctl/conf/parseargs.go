package conf

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

const (
	defBlockSize = 4 * 1024
	defCount     = defBlockSize
)

//MustGetConfig successful reads configuration from command-line arguments and
// creates a Config or it exits with feedback for the invoking user
func MustGetConfig() *Config {

	var backing string
	var help bool
	cfg := new(Config)

	flag.StringVar(&backing, "backing", "file", "Kind of backing store for the region: 'file', 'mmap' or 'device'.")
	flag.StringVar(&cfg.Path, "path", "", "Backing file or block device holding the region")
	flagCapacityVar(&cfg.BlockSize, "block-size", defBlockSize, "Region block size; offsets and buffer sizes must be multiples of this (ex. 4 KiB)")
	flagCapacityVar(&cfg.Limit, "limit", 0, "Region size limit; 0 implies unbounded for 'file' and the whole device for 'device', 'mmap' requires a value (ex. 1 MiB)")
	flagCapacityVar(&cfg.DevStart, "dev-start", 0, "Byte offset of the region extent on the block device, 'device' backing only (ex. 1 GiB)")
	flagCapacityVar(&cfg.Offset, "offset", 0, "Region offset to read or write at (ex. 64 KiB)")
	flagCapacityVar(&cfg.Count, "count", defCount, "Number of bytes to read (ex. 4 KiB)")
	flag.BoolVar(&help, "help", false, "Display help and exit")

	flag.Parse()

	if help {
		fmt.Printf("Usage: %s [options see below...] <operation: 'info', 'read', 'write' or 'sync'>\n"+
			"\tExamples:\n"+
			"\t\tDescribe a 1 MiB index volume file: %s -path=/var/lib/dedup/index.vol -limit=1MiB info\n"+
			"\t\tRead its first block to stdout: %s -path=/var/lib/dedup/index.vol -limit=1MiB read\n"+
			"\t\tWrite stdin at 64 KiB of a device extent: %s -backing=device -path=/dev/sdb -dev-start=1GiB -limit=16MiB -offset=64KiB write\n\n",
			os.Args[0], os.Args[0], os.Args[0], os.Args[0])
		flag.PrintDefaults()
		os.Exit(0)
	}

	if cfg.Op = NewOperation(flag.Arg(0)); cfg.Op == OpUnknown {
		log.Fatalf("Bad argument: Unknown operation: %q (expected 'info', 'read', 'write' or 'sync')", flag.Arg(0))
	}
	if cfg.Backing = NewBackingRegion(backing); cfg.Backing == BackUnknown {
		log.Fatalf("Bad argument: Unknown backing store type of: %q", backing)
	}

	if cfg.Path == "" {
		log.Fatalf("No backing path was provided (use -path=X)")
	}
	var err error
	if cfg.Path, err = filepath.Abs(cfg.Path); err != nil {
		log.Fatalf("Could not resolve backing path (-path=%q) to an absolute path: %s", cfg.Path, err)
	}

	if cfg.BlockSize < 1 {
		log.Fatalf("Block size must be positive (use -block-size=X)")
	}
	if cfg.Backing == BackMmap && cfg.Limit < 1 {
		log.Fatalf("The 'mmap' backing needs the region size up front (use -limit=X)")
	}
	if int64(cfg.Offset)%int64(cfg.BlockSize) != 0 {
		log.Fatalf("Offset %s is not aligned to the %s block size", cfg.Offset.String(), cfg.BlockSize.String())
	}

	return cfg
}
