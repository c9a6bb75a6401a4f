package app

// MinPlayersToStartGame defines the minimum number of players required to start a race.
// Keep this centralized so tests or local runs can adjust the rule without touching multiple call sites.
const MinPlayersToStartGame = 2
