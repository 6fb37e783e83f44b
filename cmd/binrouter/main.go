// Copyright 2018 The kingbus Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/amplifydb/binrouter/config"
	"github.com/amplifydb/binrouter/log"
	"github.com/amplifydb/binrouter/server"
)

var (
	//BuildDate is set by the release build
	BuildDate string
	//BuildVersion is set by the release build
	BuildVersion string
)

func main() {
	configFile := flag.String("config", "./binrouter.yaml", "binrouter config file")
	printVersion := flag.Bool("version", false, "print binrouter version info")
	flag.Parse()

	if *printVersion {
		fmt.Printf("version is %s, build at %s\n", BuildVersion, BuildDate)
		return
	}

	fmt.Printf("version is %s, build at %s\n", BuildVersion, BuildDate)

	if len(*configFile) == 0 {
		fmt.Println("must use a config file")
		return
	}

	serverCfg, err := config.NewServerConfig(*configFile)
	if err != nil {
		fmt.Printf("NewServerConfig error,err:%s\n", err.Error())
		return
	}

	log.InitLoggers(serverCfg.LogDir, serverCfg.LogLevel)
	defer log.UnInitLoggers()

	svr, err := server.NewServer(serverCfg)
	if err != nil {
		log.Log.Fatalf("main:NewServer error,err:%s", err)
	}

	if err := svr.Run(); err != nil {
		log.Log.Fatalf("main:Run error,err:%s", err)
	}

	sc := make(chan os.Signal, 1)
	signal.Notify(sc,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	sig := <-sc
	log.Log.Infof("received signal %s, shutting down", sig)
	svr.Stop()
}
