package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// writeImportScripts writes import_all.sh and import_all.bat next to the
// chunk files. They feed every chunk to psql sequentially, for hosts where
// the built-in load command is not available.
func writeImportScripts(dir, prefix string, chunks int) error {
	shPath := filepath.Join(dir, "import_all.sh")
	if err := os.WriteFile(shPath, []byte(shellImportScript(prefix, chunks)), 0o755); err != nil {
		return fmt.Errorf("write %s: %w", shPath, err)
	}
	batPath := filepath.Join(dir, "import_all.bat")
	if err := os.WriteFile(batPath, []byte(batchImportScript(prefix, chunks)), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", batPath, err)
	}
	return nil
}

func shellImportScript(prefix string, chunks int) string {
	var b strings.Builder
	b.WriteString("#!/bin/bash\n")
	b.WriteString("# Sequential psql import of the converted data chunks.\n")
	b.WriteString("# Usage: ./import_all.sh <database> [user] [host] [port]\n\n")
	b.WriteString("DB_NAME=$1\n")
	b.WriteString("DB_USER=${2:-postgres}\n")
	b.WriteString("DB_HOST=${3:-localhost}\n")
	b.WriteString("DB_PORT=${4:-5432}\n\n")
	b.WriteString("if [ -z \"$DB_NAME\" ]; then\n")
	b.WriteString("    echo \"usage: ./import_all.sh <database> [user] [host] [port]\"\n")
	b.WriteString("    exit 1\n")
	b.WriteString("fi\n\n")
	b.WriteString("if [ -z \"$PGPASSWORD\" ]; then\n")
	b.WriteString("    read -r -s -p \"Password for $DB_USER (reused for every file): \" PGPASSWORD\n")
	b.WriteString("    export PGPASSWORD\n")
	b.WriteString("    echo\n")
	b.WriteString("fi\n\n")
	for i := 1; i <= chunks; i++ {
		name := chunkFileName(prefix, i)
		fmt.Fprintf(&b, "echo \"importing %s (%d/%d)\"\n", name, i, chunks)
		fmt.Fprintf(&b, "psql -h \"$DB_HOST\" -p \"$DB_PORT\" -U \"$DB_USER\" -d \"$DB_NAME\" -f \"%s\" || exit 1\n", name)
	}
	b.WriteString("echo \"all chunks imported\"\n")
	return b.String()
}

func batchImportScript(prefix string, chunks int) string {
	var b strings.Builder
	b.WriteString("@echo off\r\n")
	b.WriteString("REM Sequential psql import of the converted data chunks.\r\n")
	b.WriteString("REM Usage: import_all.bat <database> [user] [host] [port]\r\n\r\n")
	b.WriteString("setlocal\r\n\r\n")
	b.WriteString("set DB_NAME=%1\r\n")
	b.WriteString("set DB_USER=%2\r\n")
	b.WriteString("set DB_HOST=%3\r\n")
	b.WriteString("set DB_PORT=%4\r\n\r\n")
	b.WriteString("if \"%DB_NAME%\"==\"\" (\r\n")
	b.WriteString("    echo usage: import_all.bat ^<database^> [user] [host] [port]\r\n")
	b.WriteString("    exit /b 1\r\n")
	b.WriteString(")\r\n\r\n")
	b.WriteString("if \"%DB_USER%\"==\"\" set DB_USER=postgres\r\n")
	b.WriteString("if \"%DB_HOST%\"==\"\" set DB_HOST=localhost\r\n")
	b.WriteString("if \"%DB_PORT%\"==\"\" set DB_PORT=5432\r\n\r\n")
	for i := 1; i <= chunks; i++ {
		name := chunkFileName(prefix, i)
		fmt.Fprintf(&b, "echo importing %s (%d/%d)\r\n", name, i, chunks)
		fmt.Fprintf(&b, "psql -h %%DB_HOST%% -p %%DB_PORT%% -U %%DB_USER%% -d %%DB_NAME%% -f %s\r\n", name)
		b.WriteString("if errorlevel 1 exit /b 1\r\n\r\n")
	}
	b.WriteString("echo all chunks imported\r\n")
	b.WriteString("endlocal\r\n")
	return b.String()
}
