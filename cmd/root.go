package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gamesage",
	Short: "gamesage - ผู้ช่วยคุยเรื่องเกมในเทอร์มินัล",
	Long: `gamesage เป็นผู้ช่วยตอบคำถามเกี่ยวกับวิดีโอเกมในเทอร์มินัล
ถามเรื่องราคาเกมได้ข้อมูลจาก Steam Store ถามเรื่องเกมมาแรงได้ข้อมูลจากเว็บ
ส่วนคำถามเกมทั่วไปตอบด้วยโมเดลภาษา

Running gamesage with no arguments starts the interactive chat.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd, args)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
