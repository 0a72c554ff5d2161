package ir

// ToolVersion is the hitkit version.
const ToolVersion = "0.1.0"
