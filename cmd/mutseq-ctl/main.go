package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/zynmi/mutseq/rpc"
	"github.com/zynmi/mutseq/version"
)

func main() {
	address := flag.String("a", rpc.DefaultAddress, "Address of the mutseq-play remote control.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.Banner("mutseq-ctl"))
		os.Exit(0)
	}
	if flag.NArg() == 0 || flag.NArg()%2 != 0 && flag.Arg(0) != "status" {
		flag.Usage()
		os.Exit(1)
	}
	client, err := rpc.Dial(*address)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not connect to %v: %v\n", *address, err)
		os.Exit(1)
	}
	defer client.Close()
	if flag.Arg(0) == "status" {
		s, err := client.Status()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Printf("running %v, step %d, %.2f BPM, note %d, %d events dropped\n", s.Running, s.Step+1, s.BPM, s.Note, s.Dropped)
		return
	}
	retval := 0
	for i := 0; i < flag.NArg(); i += 2 {
		name := flag.Arg(i)
		value, err := strconv.ParseFloat(flag.Arg(i+1), 32)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid value for %v: %v\n", name, err)
			retval = 1
			continue
		}
		ok, err := client.SetParam(name, float32(value))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			retval = 1
		} else if !ok {
			fmt.Fprintf(os.Stderr, "the player is busy, %v was not set\n", name)
			retval = 1
		}
	}
	os.Exit(retval)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Remote control for mutseq-play -listen.\nUsage: %s [flags] status\n       %s [flags] control value [control value ...]\n", os.Args[0], os.Args[0])
	flag.PrintDefaults()
}
