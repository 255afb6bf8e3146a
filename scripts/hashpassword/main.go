package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/folio/internal/service"
)

// 生成 ADMIN_PASSWORD_HASH：参数优先，否则从标准输入读取一行
func main() {
	password := strings.Join(os.Args[1:], " ")
	if password == "" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(os.Stderr, "usage: hashpassword <password>")
			os.Exit(1)
		}
		password = strings.TrimRight(line, "\r\n")
	}
	if password == "" {
		fmt.Fprintln(os.Stderr, "password cannot be empty")
		os.Exit(1)
	}

	hash, err := service.HashPassword(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash password: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
